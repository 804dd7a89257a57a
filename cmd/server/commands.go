package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/phrazzld/obo-api/internal/config"
	"github.com/phrazzld/obo-api/internal/platform/logger"
	"github.com/phrazzld/obo-api/internal/platform/postgres"
	"github.com/phrazzld/obo-api/internal/redact"
	"github.com/spf13/cobra"
)

// cliOptions holds the flags shared by every command.
type cliOptions struct {
	configPath string
	loader     *config.Loader
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "obo-server",
		Short: "OBO deck API server",
		Long: `obo-server serves flashcard decks stored in PostgreSQL over a read-only
JSON API, together with a browser viewer, a health check and Prometheus metrics.

Configuration is read from obo.yaml (or --config), then OBO_* environment
variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts.loader = config.NewLoader(opts.configPath)
			if f := cmd.Flags().Lookup("port"); f != nil {
				return opts.loader.BindFlag("server.port", f)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (default: ./obo.yaml or /etc/obo/obo.yaml)")

	serve := newServeCmd(opts)
	root.AddCommand(serve, newCheckCmd(opts))

	// Running the bare binary starts the server.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func newServeCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts.loader)
		},
	}
	cmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	return cmd
}

func newCheckCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and verify the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), opts.loader, cmd.OutOrStdout())
		},
	}
}

// loadConfigAndLogger loads the configuration and sets up the process logger.
func loadConfigAndLogger(loader *config.Loader) (*config.Config, *slog.Logger, *slog.LevelVar, error) {
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, levelVar, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_url", redact.String(cfg.Database.URL)))

	return cfg, l, levelVar, nil
}

func runServer(ctx context.Context, loader *config.Loader) error {
	cfg, l, levelVar, err := loadConfigAndLogger(loader)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		l.Error("failed to initialize application", slog.String("error", redact.Error(err)))
		return err
	}
	defer app.cleanup()

	if loader.Watch(func(next *config.Config) { app.reload(next, levelVar) }, func(err error) {
		l.Warn("ignoring invalid configuration change", slog.String("error", err.Error()))
	}) {
		l.Info("watching config file for changes")
	}

	return app.Run(ctx)
}

func runCheck(ctx context.Context, loader *config.Loader, out io.Writer) error {
	cfg, l, _, err := loadConfigAndLogger(loader)
	if err != nil {
		return err
	}

	checkCfg := cfg.Database
	checkCfg.PoolMin = 1
	checkCfg.PoolMax = 1

	conns, err := postgres.NewConnPool(ctx, checkCfg, l)
	if err != nil {
		return fmt.Errorf("database unreachable: %s", redact.Error(err))
	}
	defer conns.Close()

	deckStore := postgres.NewPostgresDeckStore(conns, cfg.Database.QueryTimeout, l)
	if err := deckStore.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %s", redact.Error(err))
	}

	_, err = fmt.Fprintln(out, "ok: configuration valid, database reachable")
	return err
}
