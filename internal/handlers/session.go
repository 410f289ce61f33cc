package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dealcraft/sales-engine/internal/services"
	"github.com/dealcraft/sales-engine/internal/storage"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// SessionHandler serves the session resource and its sub-resources.
type SessionHandler struct {
	storage      storage.Storage
	llm          services.LLMService
	deck         *deck.Deck
	applier      *engine.Applier
	selectAvatar scenario.AvatarSelector
	logger       *slog.Logger
}

func NewSessionHandler(st storage.Storage, llm services.LLMService, d *deck.Deck, selectAvatar scenario.AvatarSelector, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage:      st,
		llm:          llm,
		deck:         d,
		applier:      engine.NewApplier(logger),
		selectAvatar: selectAvatar,
		logger:       logger,
	}
}

// ServeHTTP routes session requests:
// POST   /v1/session              - create a new session
// GET    /v1/session/{id}         - read a session
// DELETE /v1/session/{id}         - delete a session
// POST   /v1/session/{id}/turn    - play an action card
// POST   /v1/session/{id}/round   - advance to the next round
// GET    /v1/session/{id}/report  - analyze a finished session
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/session"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, sessionID)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
	case "turn":
		if r.Method != http.MethodPost {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleTurn(w, r, sessionID)
	case "round":
		if r.Method != http.MethodPost {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleRound(w, r, sessionID)
	case "report":
		if r.Method != http.MethodGet {
			respondError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleReport(w, r, sessionID)
	default:
		respondError(w, h.logger, http.StatusNotFound, "Unknown resource")
	}
}

// CreateSessionRequest defines the request body for creating a
// session.
type CreateSessionRequest struct {
	Industry string `json:"industry"`
	Product  string `json:"product"`
	Target   string `json:"target"`
	Language string `json:"language,omitempty"`
	Mode     string `json:"game_mode,omitempty"`
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		respondError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	params := scenario.Params{
		Industry: req.Industry,
		Product:  req.Product,
		Target:   req.Target,
		Language: req.Language,
		Mode:     session.Mode(req.Mode),
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		h.logger.Warn("Invalid session params", "error", err)
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	gen, err := h.llm.GenerateScenario(r.Context(), params)
	if err != nil {
		h.logger.Error("Scenario generation failed", "error", err)
		respondError(w, h.logger, http.StatusBadGateway, "Failed to generate scenario. Please try again.")
		return
	}

	s, err := engine.NewSession(params, gen, h.selectAvatar)
	if err != nil {
		h.logger.Error("Session bootstrap failed", "error", err)
		respondError(w, h.logger, http.StatusBadGateway, "Generated scenario was invalid. Please try again.")
		return
	}

	// Start round 1 immediately so the new session is playable and
	// carries the first organization disclosure.
	s, err = engine.AdvanceRound(s)
	if err != nil {
		h.logger.Error("Failed to start first round", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if err := h.storage.SaveSession(r.Context(), s.ID, s); err != nil {
		h.logger.Error("Failed to save new session", "error", err, "id", s.ID.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info("Session created", "id", s.ID.String(), "mode", s.Mode, "project", s.Project.Title)
	respondJSON(w, h.logger, http.StatusCreated, s)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
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
	respondJSON(w, h.logger, http.StatusOK, s)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "id", id.String())
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.logger.Debug("Session deleted", "id", id.String())
	w.WriteHeader(http.StatusNoContent)
}
