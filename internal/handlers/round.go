package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dealcraft/sales-engine/pkg/engine"
)

func (h *SessionHandler) handleRound(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
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

	next, err := engine.AdvanceRound(s)
	if err != nil {
		if errors.Is(err, engine.ErrSessionOver) {
			respondError(w, h.logger, http.StatusConflict, "Session is over")
			return
		}
		h.logger.Error("Failed to advance round", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to advance round")
		return
	}

	if err := h.storage.SaveSession(r.Context(), next.ID, next); err != nil {
		h.logger.Error("Failed to save session after round advance", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Debug("Round advanced", "id", id.String(), "round", next.Round, "status", next.Status)
	respondJSON(w, h.logger, http.StatusOK, next)
}
