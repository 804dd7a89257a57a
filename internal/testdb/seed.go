//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// CardFixture is a card to insert with SeedDeck.
type CardFixture struct {
	Position int
	Question string
	Answer   string
}

// DeckFixture is a deck to insert with SeedDeck.
type DeckFixture struct {
	Name   string
	AgeMin int
	AgeMax int
	Voice  *string
	Cards  []CardFixture
}

// ResetDecks deletes every deck and card and restarts the ID sequences.
func ResetDecks(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	_, err := db.ExecContext(ctx, "TRUNCATE cards, decks RESTART IDENTITY CASCADE")
	require.NoError(t, err, "Failed to reset decks")
}

// SeedDeck inserts a deck and its cards in one transaction and returns the
// deck ID. Cards are inserted in the order given, so ID order follows slice
// order even when positions repeat.
func SeedDeck(t *testing.T, db *sql.DB, deck DeckFixture) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "Failed to begin transaction")
	defer func() {
		_ = tx.Rollback()
	}()

	var id int64
	err = tx.QueryRowContext(ctx,
		"INSERT INTO decks (name, age_min, age_max, voice) VALUES ($1, $2, $3, $4) RETURNING id",
		deck.Name, deck.AgeMin, deck.AgeMax, deck.Voice,
	).Scan(&id)
	require.NoError(t, err, "Failed to insert deck %q", deck.Name)

	for _, c := range deck.Cards {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO cards (deck_id, position, question, answer) VALUES ($1, $2, $3, $4)",
			id, c.Position, c.Question, c.Answer,
		)
		require.NoError(t, err, "Failed to insert card %d of deck %q", c.Position, deck.Name)
	}

	require.NoError(t, tx.Commit(), "Failed to commit deck %q", deck.Name)
	return id
}
