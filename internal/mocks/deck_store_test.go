package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/mocks"
	"github.com/phrazzld/obo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeckStore(t *testing.T) {
	ctx := context.Background()
	s := mocks.NewMemoryDeckStore(
		domain.Deck{DeckSummary: domain.DeckSummary{ID: 2, AgeMin: 9, AgeMax: 12}},
		domain.Deck{
			DeckSummary: domain.DeckSummary{ID: 1, AgeMin: 5, AgeMax: 8},
			Cards: []domain.Card{
				{Question: "Q2", Position: 1},
				{Question: "Q1", Position: 0},
			},
		},
	)

	age := 6
	page, err := s.ListDecks(ctx, domain.DeckFilter{Age: &age, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Decks, 1)
	assert.Equal(t, int64(1), page.Decks[0].ID)
	assert.Equal(t, 2, page.Decks[0].CardCount)

	page, err = s.ListDecks(ctx, domain.DeckFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Decks, 1)
	assert.Equal(t, int64(2), page.Decks[0].ID)
	assert.Equal(t, 2, page.Total)

	page, err = s.ListDecks(ctx, domain.DeckFilter{Limit: 1, Offset: 5})
	require.NoError(t, err)
	assert.NotNil(t, page.Decks)
	assert.Empty(t, page.Decks)

	deck, err := s.GetDeck(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Q1", deck.Cards[0].Question)
	assert.Equal(t, "Q2", deck.Cards[1].Question)

	_, err = s.GetDeck(ctx, 999)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	stats, err := s.ContentStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentStats{Decks: 2, Cards: 2}, *stats)

	s.Err = errors.New("down")
	assert.Error(t, s.Ping(ctx))
}
