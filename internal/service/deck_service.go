package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/metrics"
	"github.com/phrazzld/obo-api/internal/platform/logger"
	"github.com/phrazzld/obo-api/internal/platform/pool"
	"github.com/phrazzld/obo-api/internal/redact"
	"github.com/phrazzld/obo-api/internal/store"
)

// DeckService provides read access to decks for the HTTP layer.
type DeckService interface {
	// ListDecks validates filter and returns one page of deck summaries.
	ListDecks(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error)

	// GetDeck returns a deck with all its cards, or ErrDeckNotFound.
	GetDeck(ctx context.Context, id int64) (*domain.Deck, error)

	// ContentStats returns total deck and card counts.
	ContentStats(ctx context.Context) (*domain.ContentStats, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// OperationRecorder receives the outcome of every store operation.
// *metrics.Registry satisfies it.
type OperationRecorder interface {
	ObserveOperation(op metrics.Operation, outcome metrics.Outcome, elapsed time.Duration)
}

// deckServiceImpl implements the DeckService interface
type deckServiceImpl struct {
	store    store.DeckStore
	recorder OperationRecorder
	logger   *slog.Logger
}

// NewDeckService creates a new DeckService.
// It returns an error if store or recorder is nil.
func NewDeckService(deckStore store.DeckStore, recorder OperationRecorder, logger *slog.Logger) (DeckService, error) {
	if deckStore == nil {
		return nil, &DeckServiceError{
			Operation: "create_service",
			Message:   "deckStore cannot be nil",
		}
	}
	if recorder == nil {
		return nil, &DeckServiceError{
			Operation: "create_service",
			Message:   "recorder cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		store:    deckStore,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "deck_service")),
	}, nil
}

// ListDecks implements DeckService.ListDecks.
func (s *deckServiceImpl) ListDecks(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error) {
	start := time.Now()

	if err := filter.Validate(); err != nil {
		s.observe(ctx, metrics.OpListDecks, start, err)
		return nil, err
	}

	page, err := s.store.ListDecks(ctx, filter)
	s.observe(ctx, metrics.OpListDecks, start, err)
	if err != nil {
		return nil, NewDeckServiceError("list_decks", "failed to list decks", err)
	}

	return page, nil
}

// GetDeck implements DeckService.GetDeck.
func (s *deckServiceImpl) GetDeck(ctx context.Context, id int64) (*domain.Deck, error) {
	start := time.Now()

	if id < 1 {
		err := domain.NewValidationError("id", "must be a positive integer", domain.ErrInvalidID)
		s.observe(ctx, metrics.OpGetDeck, start, err)
		return nil, err
	}

	deck, err := s.store.GetDeck(ctx, id)
	s.observe(ctx, metrics.OpGetDeck, start, err, slog.Int64("deck_id", id))
	if err != nil {
		return nil, NewDeckServiceError("get_deck", "failed to retrieve deck", err)
	}

	return deck, nil
}

// ContentStats implements DeckService.ContentStats.
func (s *deckServiceImpl) ContentStats(ctx context.Context) (*domain.ContentStats, error) {
	start := time.Now()

	stats, err := s.store.ContentStats(ctx)
	s.observe(ctx, metrics.OpContentStats, start, err)
	if err != nil {
		return nil, NewDeckServiceError("content_stats", "failed to count content", err)
	}

	return stats, nil
}

// Ping implements DeckService.Ping.
func (s *deckServiceImpl) Ping(ctx context.Context) error {
	start := time.Now()

	err := s.store.Ping(ctx)
	s.observe(ctx, metrics.OpPing, start, err)
	return NewDeckServiceError("ping", "store did not answer", err)
}

// observe records the operation and logs failures at a level matching how
// actionable they are.
func (s *deckServiceImpl) observe(
	ctx context.Context,
	op metrics.Operation,
	start time.Time,
	err error,
	attrs ...any,
) {
	elapsed := time.Since(start)
	outcome := ClassifyOutcome(ctx, err)
	s.recorder.ObserveOperation(op, outcome, elapsed)

	if err == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	attrs = append(attrs,
		slog.String("operation", string(op)),
		slog.String("outcome", string(outcome)),
		slog.Duration("elapsed", elapsed))

	switch outcome {
	case metrics.OutcomeNotFound, metrics.OutcomeInvalid, metrics.OutcomeCanceled:
		log.Debug("store operation did not succeed", append(attrs, slog.String("reason", err.Error()))...)
	case metrics.OutcomePoolExhausted:
		log.Warn("no store connection available", attrs...)
	default:
		log.Error("store operation failed", append(attrs, slog.String("error", redact.Error(err)))...)
	}
}

// ClassifyOutcome maps the result of a store operation to a metrics outcome.
func ClassifyOutcome(ctx context.Context, err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case domain.IsValidationError(err):
		return metrics.OutcomeInvalid
	case store.IsNotFoundError(err), errors.Is(err, ErrDeckNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, pool.ErrPoolExhausted):
		return metrics.OutcomePoolExhausted
	case errors.Is(err, context.Canceled), ctx != nil && errors.Is(ctx.Err(), context.Canceled):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}
