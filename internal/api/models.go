package api

import (
	"time"

	"github.com/phrazzld/obo-api/internal/domain"
)

// DeckSummaryResponse is the listing view of a deck.
type DeckSummaryResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	AgeMin    int        `json:"ageMin"`
	AgeMax    int        `json:"ageMax"`
	CardCount int        `json:"cardCount"`
	Voice     *string    `json:"voice,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// CardResponse is one question/answer pair of a deck.
type CardResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Position int    `json:"position"`
}

// DeckResponse is a deck with its complete card sequence.
type DeckResponse struct {
	DeckSummaryResponse
	Cards []CardResponse `json:"cards"`
}

// DeckListResponse is one page of the deck listing.
type DeckListResponse struct {
	Decks []DeckSummaryResponse `json:"decks"`
	// Total counts every deck matching the filter, not just this page.
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// HealthResponse reports process and store health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health states.
const (
	HealthStatusOK           = "ok"
	HealthStatusDegraded     = "degraded"
	DatabaseStateConnected   = "connected"
	DatabaseStateUnreachable = "unreachable"
	DatabaseStateBusy        = "busy"
)

func deckSummaryToResponse(s domain.DeckSummary) DeckSummaryResponse {
	resp := DeckSummaryResponse{
		ID:        s.ID,
		Name:      s.Name,
		AgeMin:    s.AgeMin,
		AgeMax:    s.AgeMax,
		CardCount: s.CardCount,
		Voice:     s.Voice,
	}
	if !s.CreatedAt.IsZero() {
		createdAt := s.CreatedAt.UTC()
		resp.CreatedAt = &createdAt
	}
	return resp
}

func deckToResponse(d *domain.Deck) DeckResponse {
	cards := make([]CardResponse, 0, len(d.Cards))
	for _, c := range d.Cards {
		cards = append(cards, CardResponse{
			Question: c.Question,
			Answer:   c.Answer,
			Position: c.Position,
		})
	}
	return DeckResponse{
		DeckSummaryResponse: deckSummaryToResponse(d.DeckSummary),
		Cards:               cards,
	}
}

func deckPageToResponse(p *domain.DeckPage) DeckListResponse {
	decks := make([]DeckSummaryResponse, 0, len(p.Decks))
	for _, s := range p.Decks {
		decks = append(decks, deckSummaryToResponse(s))
	}
	return DeckListResponse{
		Decks:  decks,
		Total:  p.Total,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
}
