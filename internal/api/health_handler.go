package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/obo-api/internal/api/shared"
	"github.com/phrazzld/obo-api/internal/platform/logger"
	"github.com/phrazzld/obo-api/internal/platform/pool"
	"github.com/phrazzld/obo-api/internal/redact"
	"github.com/phrazzld/obo-api/internal/service"
)

// DefaultHealthTimeout bounds the store ping behind /health.
const DefaultHealthTimeout = 2 * time.Second

// HealthHandler reports whether the process can reach its store.
type HealthHandler struct {
	deckService service.DeckService
	timeout     time.Duration
	logger      *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. A non-positive timeout
// selects DefaultHealthTimeout.
func NewHealthHandler(deckService service.DeckService, timeout time.Duration, logger *slog.Logger) *HealthHandler {
	if deckService == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("deckService cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		deckService: deckService,
		timeout:     timeout,
		logger:      logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.deckService.Ping(ctx); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("health check failed",
			slog.String("error", redact.Error(err)))
		state := DatabaseStateUnreachable
		if errors.Is(err, pool.ErrPoolExhausted) {
			// Reachable, but every connection is checked out.
			state = DatabaseStateBusy
		}
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{
			Status:   HealthStatusDegraded,
			Database: state,
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:   HealthStatusOK,
		Database: DatabaseStateConnected,
	})
}
