package service

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/phrazzld/obo-api/internal/metrics"
	"github.com/stretchr/testify/mock"
)

// MockDeckStore mocks the store.DeckStore interface
type MockDeckStore struct {
	mock.Mock
}

func (m *MockDeckStore) ListDecks(ctx context.Context, filter domain.DeckFilter) (*domain.DeckPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeckPage), args.Error(1)
}

func (m *MockDeckStore) GetDeck(ctx context.Context, id int64) (*domain.Deck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *MockDeckStore) ContentStats(ctx context.Context) (*domain.ContentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentStats), args.Error(1)
}

func (m *MockDeckStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type observation struct {
	op      metrics.Operation
	outcome metrics.Outcome
}

// recordingObserver captures ObserveOperation calls.
type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveOperation(op metrics.Operation, outcome metrics.Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{op: op, outcome: outcome})
}

func (r *recordingObserver) observations() []observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observation(nil), r.seen...)
}
