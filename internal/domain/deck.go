package domain

import (
	"fmt"
	"time"
)

// Listing bounds applied to every deck query.
const (
	// DefaultLimit is used when the caller does not supply a limit.
	DefaultLimit = 50

	// MaxLimit is the largest page a caller may request.
	MaxLimit = 200

	// MaxAge is the largest age accepted by the age filter.
	MaxAge = 150
)

// DeckSummary is the listing view of a deck: everything except card bodies.
type DeckSummary struct {
	ID        int64
	Name      string
	AgeMin    int
	AgeMax    int
	Voice     *string
	CardCount int
	CreatedAt time.Time
}

// ContainsAge reports whether age falls inside the deck's inclusive age range.
func (s DeckSummary) ContainsAge(age int) bool {
	return s.AgeMin <= age && age <= s.AgeMax
}

// Deck is the detail view of a deck with its complete card sequence,
// ordered by position.
type Deck struct {
	DeckSummary
	Cards []Card
}

// DeckPage is one page of a deck listing.
type DeckPage struct {
	Decks []DeckSummary
	// Total is the number of decks matching the filter, ignoring pagination.
	Total  int
	Limit  int
	Offset int
}

// ContentStats are aggregate counts over the whole store.
type ContentStats struct {
	Decks int64
	Cards int64
}

// DeckFilter selects and paginates decks.
type DeckFilter struct {
	// Age, when set, selects decks whose age range contains it.
	Age    *int
	Limit  int
	Offset int
}

// NewDeckFilter returns a filter with the default limit and no age constraint.
func NewDeckFilter() DeckFilter {
	return DeckFilter{Limit: DefaultLimit}
}

// Validate checks the filter bounds.
func (f DeckFilter) Validate() error {
	if f.Age != nil && (*f.Age < 0 || *f.Age > MaxAge) {
		return NewValidationError("age", fmt.Sprintf("must be between 0 and %d", MaxAge), ErrOutOfRange)
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		return NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit), ErrOutOfRange)
	}
	if f.Offset < 0 {
		return NewValidationError("offset", "must not be negative", ErrOutOfRange)
	}
	return nil
}

// ClampedLimit returns the limit forced into [1, MaxLimit].
func (f DeckFilter) ClampedLimit() int {
	switch {
	case f.Limit < 1:
		return 1
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// ClampedOffset returns the offset floored at zero.
func (f DeckFilter) ClampedOffset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}
