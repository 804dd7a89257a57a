package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/store"
)

// MemoryDeckStore is an in-memory store.DeckStore. It follows the same
// filtering, ordering, and pagination rules as the PostgreSQL store.
type MemoryDeckStore struct {
	mu    sync.RWMutex
	decks map[int64]domain.Deck

	// Err, when set, is returned by every method instead of a result.
	Err error
}

var _ store.DeckStore = (*MemoryDeckStore)(nil)

// NewMemoryDeckStore returns a store holding decks. CardCount is derived from
// the cards given.
func NewMemoryDeckStore(decks ...domain.Deck) *MemoryDeckStore {
	s := &MemoryDeckStore{decks: make(map[int64]domain.Deck, len(decks))}
	for _, d := range decks {
		s.Put(d)
	}
	return s
}

// Put adds or replaces a deck.
func (s *MemoryDeckStore) Put(d domain.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.Cards = append([]domain.Card(nil), d.Cards...)
	sort.SliceStable(d.Cards, func(i, j int) bool { return d.Cards[i].Position < d.Cards[j].Position })
	d.CardCount = len(d.Cards)
	s.decks[d.ID] = d
}

// ListDecks implements store.DeckStore.ListDecks.
func (s *MemoryDeckStore) ListDecks(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.DeckSummary
	for _, d := range s.decks {
		if filter.Age != nil && !d.ContainsAge(*filter.Age) {
			continue
		}
		matched = append(matched, d.DeckSummary)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := &domain.DeckPage{
		Decks:  []domain.DeckSummary{},
		Total:  len(matched),
		Limit:  filter.ClampedLimit(),
		Offset: filter.ClampedOffset(),
	}
	if page.Offset < len(matched) {
		end := min(page.Offset+page.Limit, len(matched))
		page.Decks = append(page.Decks, matched[page.Offset:end]...)
	}
	return page, nil
}

// GetDeck implements store.DeckStore.GetDeck.
func (s *MemoryDeckStore) GetDeck(ctx context.Context, id int64) (*domain.Deck, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	d.Cards = append([]domain.Card{}, d.Cards...)
	return &d, nil
}

// ContentStats implements store.DeckStore.ContentStats.
func (s *MemoryDeckStore) ContentStats(ctx context.Context) (*domain.ContentStats, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.ContentStats{Decks: int64(len(s.decks))}
	for _, d := range s.decks {
		stats.Cards += int64(len(d.Cards))
	}
	return stats, nil
}

// Ping implements store.DeckStore.Ping.
func (s *MemoryDeckStore) Ping(ctx context.Context) error {
	return s.Err
}
