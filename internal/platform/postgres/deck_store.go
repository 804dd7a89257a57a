package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/platform/logger"
	"github.com/phrazzld/obo-api/internal/store"
)

// DefaultQueryTimeout bounds a single store operation once a connection has
// been acquired.
const DefaultQueryTimeout = 10 * time.Second

const pingSQL = "SELECT 1"

// ConnRunner lends a pooled connection to fn and takes it back afterwards.
// *ConnPool satisfies it.
type ConnRunner interface {
	With(ctx context.Context, fn func(ctx context.Context, conn *pgx.Conn) error) error
}

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	conns        ConnRunner
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
// A zero queryTimeout selects DefaultQueryTimeout. If logger is nil, a default
// logger will be used.
func NewPostgresDeckStore(conns ConnRunner, queryTimeout time.Duration, logger *slog.Logger) *PostgresDeckStore {
	if conns == nil {
		panic("conns cannot be nil")
	}

	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		conns:        conns,
		queryTimeout: queryTimeout,
		logger:       logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// ListDecks implements store.DeckStore.ListDecks.
// The page and the total count are sent as one batch on the same connection.
func (s *PostgresDeckStore) ListDecks(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pageQuery := BuildListDecksQuery(filter)
	countQuery := BuildCountDecksQuery(filter)

	page := &domain.DeckPage{
		Decks:  []domain.DeckSummary{},
		Limit:  filter.ClampedLimit(),
		Offset: filter.ClampedOffset(),
	}

	err := s.conns.With(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()

		batch := &pgx.Batch{}
		batch.Queue(pageQuery.SQL, pageQuery.Args...)
		batch.Queue(countQuery.SQL, countQuery.Args...)

		results := conn.SendBatch(ctx, batch)
		defer results.Close()

		rows, err := results.Query()
		if err != nil {
			return s.fault("list", "failed to query decks", err)
		}
		decks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.DeckSummary])
		if err != nil {
			return s.fault("list", "failed to read decks", err)
		}

		var total int64
		if err := results.QueryRow().Scan(&total); err != nil {
			return s.fault("list", "failed to count decks", err)
		}

		if err := results.Close(); err != nil {
			return s.fault("list", "failed to complete batch", err)
		}

		if len(decks) > 0 {
			page.Decks = decks
		}
		page.Total = int(total)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("listed decks",
		slog.Int("count", len(page.Decks)),
		slog.Int("total", page.Total),
		slog.Int("limit", page.Limit),
		slog.Int("offset", page.Offset))

	return page, nil
}

// GetDeck implements store.DeckStore.GetDeck.
// The deck row and its cards are read in one repeatable-read transaction so
// the card list always belongs to the deck row that was returned.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *PostgresDeckStore) GetDeck(ctx context.Context, id int64) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deckQuery := BuildGetDeckQuery(id)
	cardsQuery := BuildGetCardsQuery(id)

	var deck *domain.Deck
	err := s.conns.With(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()

		ctx = logger.WithLogger(ctx, log)
		err := RunInSnapshot(ctx, conn, func(ctx context.Context, tx pgx.Tx) error {
			rows, _ := tx.Query(ctx, deckQuery.SQL, deckQuery.Args...)
			summary, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[domain.DeckSummary])
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrDeckNotFound
			}
			if err != nil {
				return s.fault("get", "failed to query deck", err)
			}

			rows, _ = tx.Query(ctx, cardsQuery.SQL, cardsQuery.Args...)
			cards, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Card])
			if err != nil {
				return s.fault("get", "failed to query cards", err)
			}

			deck = &domain.Deck{DeckSummary: summary, Cards: cards}
			return nil
		})
		if err != nil && !errors.Is(err, store.ErrDeckNotFound) && !store.IsStoreError(err) {
			// Begin or commit failed; the connection state is unknown.
			return s.fault("get", "transaction failed", err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			log.Debug("deck not found", slog.Int64("deck_id", id))
		}
		return nil, err
	}

	if deck.Cards == nil {
		deck.Cards = []domain.Card{}
	}

	log.Debug("retrieved deck",
		slog.Int64("deck_id", id),
		slog.Int("cards", len(deck.Cards)))

	return deck, nil
}

// ContentStats implements store.DeckStore.ContentStats.
func (s *PostgresDeckStore) ContentStats(ctx context.Context) (*domain.ContentStats, error) {
	q := BuildContentStatsQuery()

	var stats domain.ContentStats
	err := s.conns.With(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()

		if err := conn.QueryRow(ctx, q.SQL, q.Args...).Scan(&stats.Decks, &stats.Cards); err != nil {
			return s.fault("stats", "failed to count content", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// Ping implements store.DeckStore.Ping.
func (s *PostgresDeckStore) Ping(ctx context.Context) error {
	return s.conns.With(ctx, func(ctx context.Context, conn *pgx.Conn) error {
		ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()

		var one int
		if err := conn.QueryRow(ctx, pingSQL).Scan(&one); err != nil {
			return s.fault("ping", "database did not answer", err)
		}
		return nil
	})
}

// fault wraps a driver error as a StoreError. The pool discards the
// connection that produced it.
func (s *PostgresDeckStore) fault(operation, message string, err error) error {
	return store.NewStoreError("deck", operation, message, MapError(err))
}
