package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/phrazzld/obo-api/internal/config"
	"github.com/phrazzld/obo-api/internal/platform/pool"
	"github.com/phrazzld/obo-api/internal/store"
)

// ConnPool is a bounded pool of PostgreSQL connections.
type ConnPool = pool.Pool[*pgx.Conn]

// NewConnPool opens a connection pool for cfg and warms it with PoolMin
// connections. It fails if the database cannot be reached, which callers
// should treat as fatal at start-up.
func NewConnPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*ConnPool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connConfig, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	p, err := pool.New(ctx, pool.Config[*pgx.Conn]{
		MinSize:           cfg.PoolMin,
		MaxSize:           cfg.PoolMax,
		AcquireTimeout:    cfg.AcquireTimeout,
		HealthCheckPeriod: cfg.HealthCheckPeriod,
		Constructor: func(ctx context.Context) (*pgx.Conn, error) {
			return pgx.ConnectConfig(ctx, connConfig.Copy())
		},
		Destructor: func(ctx context.Context, conn *pgx.Conn) {
			if err := conn.Close(ctx); err != nil {
				logger.Debug("error closing connection", slog.String("error", err.Error()))
			}
		},
		IsBroken:  connIsBroken,
		DiscardOn: store.IsStoreError,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("database connection pool ready",
		slog.String("host", connConfig.Host),
		slog.String("database", connConfig.Database),
		slog.Int("pool_min", int(cfg.PoolMin)),
		slog.Int("pool_max", int(cfg.PoolMax)))

	return p, nil
}

// connIsBroken reports whether conn cannot safely serve another request:
// it is closed, still busy with a previous statement, or left inside a
// transaction.
func connIsBroken(conn *pgx.Conn) bool {
	if conn.IsClosed() {
		return true
	}
	pgConn := conn.PgConn()
	return pgConn.IsBusy() || pgConn.TxStatus() != 'I'
}
