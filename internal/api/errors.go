package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/obo-api/internal/api/shared"
	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/platform/pool"
	"github.com/phrazzld/obo-api/internal/service"
	"github.com/phrazzld/obo-api/internal/store"
)

// ErrRouteNotFound is reported for requests that match no route.
var ErrRouteNotFound = errors.New("route not found")

// RetryAfter is advertised to clients turned away because every store
// connection was busy.
const RetryAfter = time.Second

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	// Bad request errors
	case domain.IsValidationError(err), errors.As(err, &verrs):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrDeckNotFound),
		errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound

	// Overload: every connection busy for the whole acquire timeout
	case errors.Is(err, pool.ErrPoolExhausted):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	var verrs validator.ValidationErrors

	switch {
	case domain.IsValidationError(err), errors.As(err, &verrs):
		return SanitizeValidationError(err)

	case errors.Is(err, service.ErrDeckNotFound),
		errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Deck not found"

	case errors.Is(err, ErrRouteNotFound):
		return "Not found"

	case errors.Is(err, pool.ErrPoolExhausted):
		return "Service is busy, please retry"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the offending parameter.
func SanitizeValidationError(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		if verr.Message == "" {
			return fmt.Sprintf("Invalid %s", verr.Field)
		}
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag(), fe.Param()))
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// fromValidatorErrors converts the first field failure reported by the
// validator into a domain.ValidationError. Other errors pass through.
func fromValidatorErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return domain.NewValidationError(fe.Field(), getValidationTagMessage(fe.Tag(), fe.Param()), domain.ErrOutOfRange)
}

// HandleAPIError writes the error response matching err. Server errors get
// defaultMsg, when given, instead of the generic message; client errors always
// describe what was wrong with the request.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusServiceUnavailable {
		opts = append(opts, shared.WithRetryAfter(RetryAfter))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
