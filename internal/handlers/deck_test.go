package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealcraft/sales-engine/pkg/deck"
)

func TestDeckHandler_AllCards(t *testing.T) {
	d, err := deck.Default()
	require.NoError(t, err)
	h := NewDeckHandler(d, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/cards", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var cards []deck.Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	assert.Len(t, cards, len(d.Cards()))
}

func TestDeckHandler_StageFilter(t *testing.T) {
	d, err := deck.Default()
	require.NoError(t, err)
	h := NewDeckHandler(d, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/cards?stage=Discovery", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var cards []deck.Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	for _, c := range cards {
		assert.True(t, c.AvailableIn("Discovery"), "card %s", c.ID)
	}
}

func TestDeckHandler_UnknownStage(t *testing.T) {
	d, err := deck.Default()
	require.NoError(t, err)
	h := NewDeckHandler(d, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/cards?stage=Negotiation", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeckHandler_MethodNotAllowed(t *testing.T) {
	d, err := deck.Default()
	require.NoError(t, err)
	h := NewDeckHandler(d, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/cards", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
