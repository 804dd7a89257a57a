package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/obo-api/internal/api/shared"
	"github.com/phrazzld/obo-api/internal/platform/logger"
)

// Trace adds a trace ID and a request-scoped logger to the request context
// and echoes the trace ID in the X-Trace-ID response header. An inbound
// X-Trace-ID is reused when it is a valid UUID.
//
// It should be applied early in the middleware chain so that every later
// handler logs with the trace ID.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := shared.NormalizeTraceID(r.Header.Get(shared.TraceIDHeader))
			ctx := shared.WithTraceID(r.Context(), traceID)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(shared.TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
