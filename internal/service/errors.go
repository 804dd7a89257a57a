package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/platform/pool"
	"github.com/phrazzld/obo-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Validation errors from the domain are returned unchanged
// 3. Unexpected errors are wrapped in DeckServiceError
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrDeckNotFound indicates that the requested deck does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrBusy indicates that no store connection became free in time.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrBusy = fmt.Errorf("service busy: %w", pool.ErrPoolExhausted)
)

// DeckServiceError wraps errors from the deck service with context.
type DeckServiceError struct {
	// Operation is the operation that failed (e.g., "list_decks", "get_deck")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for DeckServiceError.
func (e *DeckServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deck service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("deck service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DeckServiceError) Unwrap() error {
	return e.Err
}

// NewDeckServiceError creates a new DeckServiceError.
// It returns known sentinel errors directly without wrapping.
func NewDeckServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrDeckNotFound), errors.Is(err, store.ErrDeckNotFound):
		return ErrDeckNotFound
	case errors.Is(err, pool.ErrPoolExhausted):
		return ErrBusy
	case domain.IsValidationError(err):
		return err
	}

	return &DeckServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
