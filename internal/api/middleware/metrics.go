package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/obo-api/internal/metrics"
	"github.com/phrazzld/obo-api/internal/platform/logger"
)

// RequestRecorder receives per-request counters. *metrics.Registry satisfies it.
type RequestRecorder interface {
	RequestStarted()
	RequestFinished(endpoint metrics.Endpoint, status int, elapsed time.Duration)
}

// Metrics counts every request, its status and its latency, and logs its
// completion. Requests are grouped by the chi route pattern they matched.
func Metrics(recorder RequestRecorder) func(http.Handler) http.Handler {
	if recorder == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("recorder cannot be nil")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder.RequestStarted()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			// Record even when a later handler panics; the recoverer further
			// in writes the 500 before this runs.
			defer func() {
				elapsed := time.Since(start)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				endpoint := EndpointFor(routePattern(r))
				recorder.RequestFinished(endpoint, status, elapsed)

				logger.FromContext(r.Context()).Debug("request completed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("endpoint", string(endpoint)),
					slog.Int("status", status),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", elapsed))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// EndpointFor maps a chi route pattern to its metrics endpoint.
func EndpointFor(pattern string) metrics.Endpoint {
	switch {
	case pattern == "/api/v1/decks":
		return metrics.EndpointListDecks
	case pattern == "/api/v1/decks/{id}":
		return metrics.EndpointGetDeck
	case pattern == "/metrics":
		return metrics.EndpointMetrics
	case pattern == "/health":
		return metrics.EndpointHealth
	case pattern == "/", strings.HasPrefix(pattern, "/static/"):
		return metrics.EndpointStatic
	default:
		return metrics.EndpointOther
	}
}
