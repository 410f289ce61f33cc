package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealcraft/sales-engine/internal/services"
	"github.com/dealcraft/sales-engine/internal/storage"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupSessionHandler(t *testing.T) (*SessionHandler, *storage.MockStorage, *services.MockLLM) {
	t.Helper()
	d, err := deck.Default()
	require.NoError(t, err)
	st := storage.NewMockStorage()
	llm := services.NewMockLLM()
	h := NewSessionHandler(st, llm, d, nil, testLogger())
	return h, st, llm
}

// seedSession stores a playable round-1 session and returns it.
func seedSession(t *testing.T, st *storage.MockStorage) *session.Session {
	t.Helper()
	params := scenario.Params{
		Industry: "SaaS",
		Product:  "CRM",
		Target:   "SMBs",
		Language: "en",
		Mode:     session.ModeQuick,
	}
	gen := services.DefaultMockScenario(params)
	s, err := engine.NewSession(params, gen, nil)
	require.NoError(t, err)
	s, err = engine.AdvanceRound(s)
	require.NoError(t, err)
	require.NoError(t, st.SaveSession(context.Background(), s.ID, s))
	return s
}

func TestSessionHandler_Create(t *testing.T) {
	h, st, _ := setupSessionHandler(t)

	body, _ := json.Marshal(CreateSessionRequest{
		Industry: "SaaS",
		Product:  "Workflow Automation",
		Target:   "Logistics companies",
		Language: "en",
		Mode:     "quick",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/session", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var s session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, 1, s.Round, "created session starts in round 1")
	assert.Equal(t, session.StatusActive, s.Status)
	assert.Equal(t, session.QuickActionPoints, s.ActionPoints)
	assert.Equal(t, scenario.PersonaCount, s.NPCs.Len())
	require.NotEmpty(t, s.History)
	assert.Contains(t, s.History[0].Content, "Round 1 Started")

	assert.Equal(t, 1, st.Len())
}

func TestSessionHandler_Create_MissingFields(t *testing.T) {
	h, _, _ := setupSessionHandler(t)

	body, _ := json.Marshal(CreateSessionRequest{Industry: "SaaS"})
	req := httptest.NewRequest(http.MethodPost, "/v1/session", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Create_OracleFailure(t *testing.T) {
	h, st, llm := setupSessionHandler(t)
	llm.SetScenarioError(fmt.Errorf("api down"))

	body, _ := json.Marshal(CreateSessionRequest{Industry: "SaaS", Product: "CRM", Target: "SMBs"})
	req := httptest.NewRequest(http.MethodPost, "/v1/session", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, 0, st.Len())
}

func TestSessionHandler_Read(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+s.ID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, s.ID, got.ID)
}

func TestSessionHandler_Read_NotFound(t *testing.T) {
	h, _, _ := setupSessionHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Read_BadID(t *testing.T) {
	h, _, _ := setupSessionHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/session/not-a-uuid", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Delete(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	req := httptest.NewRequest(http.MethodDelete, "/v1/session/"+s.ID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, st.Len())
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	req := httptest.NewRequest(http.MethodPatch, "/v1/session/"+s.ID.String(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSessionHandler_AdvanceRound(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/round", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Round)
	assert.Equal(t, got.MaxActionPoints, got.ActionPoints)
}

func TestSessionHandler_AdvanceRound_PastBudget(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)
	s.Round = s.MaxRounds
	require.NoError(t, st.SaveSession(context.Background(), s.ID, s))

	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/round", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, session.StatusNoDecision, got.Status)
}

func TestSessionHandler_AdvanceRound_Terminal(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)
	s.Status = session.StatusWon
	require.NoError(t, st.SaveSession(context.Background(), s.ID, s))

	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+s.ID.String()+"/round", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_Report(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)
	s.Status = session.StatusWon
	require.NoError(t, st.SaveSession(context.Background(), s.ID, s))

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+s.ID.String()+"/report", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "feedback_markdown")
}

func TestSessionHandler_Report_ActiveSessionRejected(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	req := httptest.NewRequest(http.MethodGet, "/v1/session/"+s.ID.String()+"/report", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
