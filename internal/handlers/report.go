package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

func (h *SessionHandler) handleReport(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
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
	if !s.Status.Terminal() {
		respondError(w, h.logger, http.StatusConflict, "Session is still active; finish the game before requesting analysis")
		return
	}

	rep, err := h.llm.AnalyzeSession(r.Context(), s.History)
	if err != nil {
		h.logger.Error("Session analysis failed", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusBadGateway, "Failed to analyze session. Please try again.")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, rep)
}
