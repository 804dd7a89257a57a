package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/obo-api/internal/config"
	"github.com/phrazzld/obo-api/internal/metrics"
	"github.com/phrazzld/obo-api/internal/platform/logger"
	"github.com/phrazzld/obo-api/internal/platform/postgres"
	"github.com/phrazzld/obo-api/internal/service"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger   *slog.Logger
	conns    *postgres.ConnPool
	registry *metrics.Registry

	// Service interfaces
	deckService service.DeckService
}

// newApplication creates a new application instance with all dependencies initialized.
// It fails if the database cannot be reached; the caller should exit.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		registry: metrics.NewRegistry(),
	}

	var err error
	app.conns, err = postgres.NewConnPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection pool: %w", err)
	}
	app.registry.SetPoolSource(poolGauges(app.conns))

	deckStore := postgres.NewPostgresDeckStore(app.conns, cfg.Database.QueryTimeout, logger)

	app.deckService, err = service.NewDeckService(deckStore, app.registry, logger)
	if err != nil {
		app.conns.Close()
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// poolGauges exposes the connection pool occupancy to the metrics registry.
func poolGauges(conns *postgres.ConnPool) metrics.PoolStatter {
	return metrics.PoolStatterFunc(func() (metrics.PoolGauges, error) {
		s := conns.Stats()
		return metrics.PoolGauges{
			Acquired: s.Acquired,
			Idle:     s.Idle,
			Total:    s.Total,
			Max:      s.Max,
		}, nil
	})
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns when ctx is canceled and the server has shut down, or when the
// server fails.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// reload applies the settings that can change without a restart. Only the
// log level is live; other changes are logged and take effect on restart.
func (app *application) reload(next *config.Config, levelVar *slog.LevelVar) {
	level, err := logger.ParseLevel(next.Server.LogLevel)
	if err != nil {
		app.logger.Warn("ignoring invalid log level", slog.String("log_level", next.Server.LogLevel))
		return
	}

	if levelVar.Level() != level {
		levelVar.Set(level)
		app.logger.Info("log level changed", slog.String("log_level", level.String()))
	}

	if next.Server.Port != app.config.Server.Port || next.Database != app.config.Database {
		app.logger.Warn("server and database settings changed; restart to apply")
	}
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.conns != nil {
		app.conns.Close()
	}
	app.logger.Info("application resources released")
}
