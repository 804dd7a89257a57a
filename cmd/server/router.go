package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/phrazzld/obo-api/internal/api"
	apiMiddleware "github.com/phrazzld/obo-api/internal/api/middleware"
	"github.com/phrazzld/obo-api/internal/web"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware. Metrics wraps Recoverer so that panics are
	// counted as 500s.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.Metrics(app.registry))
	r.Use(middleware.Recoverer)

	deckHandler := api.NewDeckHandler(app.deckService, app.logger)
	healthHandler := api.NewHealthHandler(app.deckService, 0, app.logger)
	metricsHandler := api.NewMetricsHandler(app.registry, app.deckService, 0, app.logger)

	// JSON routes are gzip-compressed when the client accepts it.
	r.Group(func(r chi.Router) {
		r.Use(compress)

		r.Get("/api/v1/decks", deckHandler.ListDecks)
		r.Get("/api/v1/decks/{id}", deckHandler.GetDeck)
	})

	r.Get("/health", healthHandler.Health)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Get("/", web.IndexHandler().ServeHTTP)
	r.Handle("/static/*", web.StaticHandler("/static/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.HandleAPIError(w, r, api.ErrRouteNotFound, "")
	})

	return r
}

func compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
