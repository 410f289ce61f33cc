package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// DeckHandler serves the action-card catalog.
type DeckHandler struct {
	deck   *deck.Deck
	logger *slog.Logger
}

func NewDeckHandler(d *deck.Deck, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{deck: d, logger: logger}
}

// ServeHTTP handles GET /v1/cards with an optional ?stage= filter.
func (h *DeckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	cards := h.deck.Cards()
	if stage := r.URL.Query().Get("stage"); stage != "" {
		if session.Stage(stage).Rank() == 0 {
			respondError(w, h.logger, http.StatusBadRequest, "Unknown stage: "+stage)
			return
		}
		cards = h.deck.ForStage(session.Stage(stage))
	}

	respondJSON(w, h.logger, http.StatusOK, cards)
}
