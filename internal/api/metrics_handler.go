package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/metrics"
	"github.com/phrazzld/obo-api/internal/platform/logger"
	"github.com/phrazzld/obo-api/internal/redact"
	"github.com/phrazzld/obo-api/internal/service"
)

// DefaultStatsTimeout bounds the content count queries behind /metrics.
const DefaultStatsTimeout = 2 * time.Second

// MetricsHandler renders the metrics registry in the Prometheus text format.
// It always answers 200: failures to read a source degrade the affected
// samples instead of failing the scrape.
type MetricsHandler struct {
	registry    *metrics.Registry
	deckService service.DeckService
	timeout     time.Duration
	logger      *slog.Logger
}

// NewMetricsHandler creates a new MetricsHandler. deckService may be nil, in
// which case content gauges are reported as degraded.
func NewMetricsHandler(
	registry *metrics.Registry,
	deckService service.DeckService,
	timeout time.Duration,
	logger *slog.Logger,
) *MetricsHandler {
	if registry == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("registry cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultStatsTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MetricsHandler{
		registry:    registry,
		deckService: deckService,
		timeout:     timeout,
		logger:      logger.With(slog.String("component", "metrics_handler")),
	}
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	content := h.contentStats(r.Context(), log)

	var buf bytes.Buffer
	if err := h.registry.WriteText(&buf, content); err != nil {
		log.Error("failed to render metrics", slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", metrics.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Debug("failed to write metrics response", slog.String("error", err.Error()))
	}
}

func (h *MetricsHandler) contentStats(ctx context.Context, log *slog.Logger) *domain.ContentStats {
	if h.deckService == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	stats, err := h.deckService.ContentStats(ctx)
	if err != nil {
		log.Warn("content stats unavailable for metrics",
			slog.String("error", redact.Error(err)))
		return nil
	}
	return stats
}
