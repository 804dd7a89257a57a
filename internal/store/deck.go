package store

import (
	"context"

	"github.com/phrazzld/obo-api/internal/domain"
)

// DeckStore defines read access to decks and their cards.
// Implementations never write; the store is owned by an external generator.
type DeckStore interface {
	// ListDecks returns one page of deck summaries matching the filter,
	// ordered by deck ID ascending, together with the unpaginated match count.
	// An empty page is not an error: Decks is then an empty, non-nil slice.
	ListDecks(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error)

	// GetDeck returns the deck with the given ID and all of its cards ordered
	// by position. Returns ErrDeckNotFound if the deck does not exist.
	// The deck row and its cards are read in one consistent snapshot.
	GetDeck(ctx context.Context, id int64) (*domain.Deck, error)

	// ContentStats returns total deck and card counts.
	ContentStats(ctx context.Context) (*domain.ContentStats, error)

	// Ping verifies that the store answers a trivial query.
	Ping(ctx context.Context) error
}
