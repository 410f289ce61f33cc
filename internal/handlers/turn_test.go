package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/session"
)

func postTurn(t *testing.T, h *SessionHandler, id string, body TurnRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+id+"/turn", bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestTurn_HappyPath(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "coffee_chat", TargetNPCID: "npc_1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TurnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Session)
	require.NotNil(t, resp.Outcome)

	assert.Equal(t, session.QuickActionPoints-1, resp.Session.ActionPoints)
	assert.NotEmpty(t, resp.Outcome.Narrative)

	// The mock oracle grants +1 trust to the target.
	npc, ok := resp.Session.NPCs.Get("npc_1")
	require.True(t, ok)
	assert.Equal(t, 2.0, npc.Trust)

	// Updated session was persisted.
	stored, err := st.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, session.QuickActionPoints-1, stored.ActionPoints)
}

func TestTurn_UnknownCard(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "bribe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTurn_MissingTarget(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "coffee_chat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "target")
}

func TestTurn_UnknownTarget(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "coffee_chat", TargetNPCID: "npc_99"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTurn_CardLockedByStage(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st) // Discovery stage

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "final_proposal", TargetNPCID: "npc_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "stage")
}

func TestTurn_NotEnoughActionPoints(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)
	s.ActionPoints = 0
	require.NoError(t, st.SaveSession(context.Background(), s.ID, s))

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "coffee_chat", TargetNPCID: "npc_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "action points")
}

func TestTurn_TerminalSession(t *testing.T) {
	h, st, _ := setupSessionHandler(t)
	s := seedSession(t, st)
	s.Status = session.StatusLost
	require.NoError(t, st.SaveSession(context.Background(), s.ID, s))

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "coffee_chat", TargetNPCID: "npc_1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTurn_OracleFailure(t *testing.T) {
	h, st, llm := setupSessionHandler(t)
	s := seedSession(t, st)
	llm.SetTurnError(fmt.Errorf("timeout"))

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "coffee_chat", TargetNPCID: "npc_1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// Session state must be unchanged after a failed resolution.
	stored, err := st.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ActionPoints, stored.ActionPoints)
}

func TestTurn_InvalidOraclePayload(t *testing.T) {
	h, st, llm := setupSessionHandler(t)
	s := seedSession(t, st)
	llm.ResolveTurnFunc = func(ctx context.Context, s *session.Session, action engine.Action, card *deck.Card, directives []string) (*engine.TurnOutcome, error) {
		return &engine.TurnOutcome{}, nil // missing narrative and npc_updates
	}

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "coffee_chat", TargetNPCID: "npc_1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	stored, err := st.LoadSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ActionPoints, stored.ActionPoints)
	assert.Equal(t, len(s.History), len(stored.History))
}

func TestTurn_DirectivesReachOracle(t *testing.T) {
	h, st, llm := setupSessionHandler(t)
	s := seedSession(t, st)

	// Push a key decision maker past the reveal threshold.
	npc, ok := s.NPCs.Get("npc_1")
	require.True(t, ok)
	require.True(t, npc.IsKeyDecisionMaker)
	npc.Trust = 3
	s.NPCs.Update("npc_1", npc)
	s.Round = 2
	require.NoError(t, st.SaveSession(context.Background(), s.ID, s))

	var captured []string
	llm.ResolveTurnFunc = func(ctx context.Context, sess *session.Session, action engine.Action, card *deck.Card, directives []string) (*engine.TurnOutcome, error) {
		captured = directives
		return &engine.TurnOutcome{Narrative: "ok", NPCUpdates: []engine.NPCUpdate{}}, nil
	}

	w := postTurn(t, h, s.ID.String(), TurnRequest{CardID: "spin_question", TargetNPCID: "npc_1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, captured)
	assert.Contains(t, captured[0], "CRITICAL RULE")
}
