package mocks

import (
	"context"

	"github.com/phrazzld/obo-api/internal/domain"
)

// MockDeckService implements service.DeckService for testing
type MockDeckService struct {
	// Custom behavior functions
	ListDecksFn    func(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error)
	GetDeckFn      func(ctx context.Context, id int64) (*domain.Deck, error)
	ContentStatsFn func(ctx context.Context) (*domain.ContentStats, error)
	PingFn         func(ctx context.Context) error

	// Default return values
	Page         *domain.DeckPage
	Deck         *domain.Deck
	Stats        *domain.ContentStats
	DefaultError error
}

// ListDecks implements the DeckService.ListDecks method
func (m *MockDeckService) ListDecks(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error) {
	if m.ListDecksFn != nil {
		return m.ListDecksFn(ctx, filter)
	}
	return m.Page, m.DefaultError
}

// GetDeck implements the DeckService.GetDeck method
func (m *MockDeckService) GetDeck(ctx context.Context, id int64) (*domain.Deck, error) {
	if m.GetDeckFn != nil {
		return m.GetDeckFn(ctx, id)
	}
	return m.Deck, m.DefaultError
}

// ContentStats implements the DeckService.ContentStats method
func (m *MockDeckService) ContentStats(ctx context.Context) (*domain.ContentStats, error) {
	if m.ContentStatsFn != nil {
		return m.ContentStatsFn(ctx)
	}
	return m.Stats, m.DefaultError
}

// Ping implements the DeckService.Ping method
func (m *MockDeckService) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return m.DefaultError
}
