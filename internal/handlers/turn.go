package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// TurnRequest is the body for playing an action card.
type TurnRequest struct {
	CardID      string `json:"card_id"`
	TargetNPCID string `json:"target_npc_id,omitempty"`
}

// TurnResponse returns the updated session together with the resolved
// outcome so clients can animate the turn without diffing state.
type TurnResponse struct {
	Session *session.Session    `json:"session"`
	Outcome *engine.TurnOutcome `json:"outcome"`
}

func (h *SessionHandler) handleTurn(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in turn request", "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.CardID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "card_id is required")
		return
	}

	s, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if s == nil {
		respondError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	if s.Status.Terminal() {
		respondError(w, h.logger, http.StatusConflict, "Session is over")
		return
	}

	card, ok := h.deck.Get(req.CardID)
	if !ok {
		respondError(w, h.logger, http.StatusBadRequest, "Unknown card: "+req.CardID)
		return
	}
	if card.TargetRequired && req.TargetNPCID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "Card requires a target NPC")
		return
	}
	if req.TargetNPCID != "" {
		if _, ok := s.NPCs.Get(req.TargetNPCID); !ok {
			respondError(w, h.logger, http.StatusBadRequest, "Unknown NPC: "+req.TargetNPCID)
			return
		}
	}
	if !card.AvailableIn(s.Stage) {
		respondError(w, h.logger, http.StatusBadRequest, "Card is not available in the current stage")
		return
	}

	cost := card.CostFor(1)
	if cost > s.ActionPoints {
		respondError(w, h.logger, http.StatusBadRequest, "Not enough action points")
		return
	}

	action := engine.Action{
		CardID:      card.ID,
		CardName:    card.Name,
		TargetNPCID: req.TargetNPCID,
	}
	directives := engine.Directives(s)

	outcome, err := h.llm.ResolveTurn(r.Context(), s, action, &card, directives)
	if err != nil {
		h.logger.Error("Turn resolution failed", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusBadGateway, "Failed to resolve turn. Please try again.")
		return
	}

	next, err := h.applier.Apply(s, action, outcome, cost)
	if err != nil {
		if engine.IsValidation(err) {
			h.logger.Error("Oracle returned invalid payload", "error", err, "id", id.String())
			respondError(w, h.logger, http.StatusBadGateway, "Oracle returned an invalid payload. Please try again.")
			return
		}
		h.logger.Error("Failed to apply turn", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to apply turn")
		return
	}

	if err := h.storage.SaveSession(r.Context(), next.ID, next); err != nil {
		h.logger.Error("Failed to save session after turn", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, TurnResponse{Session: next, Outcome: outcome})
}
