package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/obo-api/internal/api/shared"
	"github.com/phrazzld/obo-api/internal/platform/logger"
	"github.com/phrazzld/obo-api/internal/service"
)

// DeckHandler serves the deck listing and deck detail routes.
type DeckHandler struct {
	deckService service.DeckService
	logger      *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
// It panics if deckService is nil.
func NewDeckHandler(deckService service.DeckService, logger *slog.Logger) *DeckHandler {
	if deckService == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("deckService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckHandler{
		deckService: deckService,
		logger:      logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /api/v1/decks.
// Query parameters: age, limit (1-200, default 50), offset (default 0).
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	filter, err := parseDeckFilter(r)
	if err != nil {
		log.Debug("invalid deck listing parameters",
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.deckService.ListDecks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckPageToResponse(page))
}

// GetDeck handles GET /api/v1/decks/{id}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathInt64(r, "id")
	if err != nil {
		log.Debug("invalid deck id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	deck, err := h.deckService.GetDeck(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}
