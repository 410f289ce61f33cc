package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/report"
	"github.com/dealcraft/sales-engine/pkg/session"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}

// CreateSessionRequest matches the API request structure.
type CreateSessionRequest struct {
	Industry string `json:"industry"`
	Product  string `json:"product"`
	Target   string `json:"target"`
	Language string `json:"language,omitempty"`
	Mode     string `json:"game_mode,omitempty"`
}

// TurnRequest matches the API request structure.
type TurnRequest struct {
	CardID      string `json:"card_id"`
	TargetNPCID string `json:"target_npc_id,omitempty"`
}

// TurnResponse matches the API response structure.
type TurnResponse struct {
	Session *session.Session    `json:"session"`
	Outcome *engine.TurnOutcome `json:"outcome"`
}

func decodeOrError(body []byte, statusCode, wantStatus int, v any) error {
	if statusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", statusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func postJSON(client *http.Client, url string, payload any) ([]byte, int, error) {
	var buf io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		buf = bytes.NewBuffer(jsonData)
	}

	resp, err := client.Post(url, "application/json", buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func getJSON(client *http.Client, url string) ([]byte, int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func createSession(client *http.Client, baseURL string, req CreateSessionRequest) (*session.Session, error) {
	body, status, err := postJSON(client, baseURL+"/v1/session", req)
	if err != nil {
		return nil, err
	}
	var s session.Session
	if err := decodeOrError(body, status, http.StatusCreated, &s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &s, nil
}

func getSession(client *http.Client, baseURL string, id uuid.UUID) (*session.Session, error) {
	body, status, err := getJSON(client, fmt.Sprintf("%s/v1/session/%s", baseURL, id))
	if err != nil {
		return nil, err
	}
	var s session.Session
	if err := decodeOrError(body, status, http.StatusOK, &s); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func playTurn(client *http.Client, baseURL string, id uuid.UUID, req TurnRequest) (*TurnResponse, error) {
	body, status, err := postJSON(client, fmt.Sprintf("%s/v1/session/%s/turn", baseURL, id), req)
	if err != nil {
		return nil, err
	}
	var turnResp TurnResponse
	if err := decodeOrError(body, status, http.StatusOK, &turnResp); err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}
	return &turnResp, nil
}

func advanceRound(client *http.Client, baseURL string, id uuid.UUID) (*session.Session, error) {
	body, status, err := postJSON(client, fmt.Sprintf("%s/v1/session/%s/round", baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	var s session.Session
	if err := decodeOrError(body, status, http.StatusOK, &s); err != nil {
		return nil, fmt.Errorf("failed to advance round: %w", err)
	}
	return &s, nil
}

func getReport(client *http.Client, baseURL string, id uuid.UUID) (*report.Report, error) {
	body, status, err := getJSON(client, fmt.Sprintf("%s/v1/session/%s/report", baseURL, id))
	if err != nil {
		return nil, err
	}
	var rep report.Report
	if err := decodeOrError(body, status, http.StatusOK, &rep); err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &rep, nil
}

func listCards(client *http.Client, baseURL string) ([]deck.Card, error) {
	body, status, err := getJSON(client, baseURL+"/v1/cards")
	if err != nil {
		return nil, err
	}
	var cards []deck.Card
	if err := decodeOrError(body, status, http.StatusOK, &cards); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}
