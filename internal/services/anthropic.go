package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/report"
	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 4096
)

// AnthropicService implements LLMService against the Anthropic
// Messages API. Structured output is requested through the system
// prompts; responses are parsed as JSON payloads.
type AnthropicService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ LLMService = (*AnthropicService)(nil)

type anthropicChatRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicService(apiKey string, modelName string, logger *slog.Logger) *AnthropicService {
	return &AnthropicService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// splitMessages extracts system messages into a single system prompt
// and returns the remaining conversation messages, per the Anthropic
// message format.
func (a *AnthropicService) splitMessages(messages []Message) (string, []Message) {
	var systemParts []string
	var conversation []Message

	for _, msg := range messages {
		if msg.Role == chat.RoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			conversation = append(conversation, msg)
		}
	}

	return strings.Join(systemParts, "\n\n"), conversation
}

func (a *AnthropicService) chatCompletion(ctx context.Context, messages []Message) (string, error) {
	systemPrompt, conversation := a.splitMessages(messages)

	temperature := DefaultAnthropicTemperature
	anthropicReq := anthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		Messages:    conversation,
		System:      systemPrompt,
		Stream:      false,
	}

	reqBody, err := json.Marshal(anthropicReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", anthropicBaseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var anthropicResp anthropicChatResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if anthropicResp.Error != nil {
		return "", fmt.Errorf("API error: %s", anthropicResp.Error.Message)
	}

	var responseText string
	for _, content := range anthropicResp.Content {
		if content.Type == "text" {
			responseText += content.Text
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return responseText, nil
}

// GenerateScenario asks the oracle for a full scenario and validates
// its structural contract before returning it.
func (a *AnthropicService) GenerateScenario(ctx context.Context, params scenario.Params) (*scenario.Generated, error) {
	messages := []Message{
		{Role: chat.RoleSystem, Content: ScenarioSystemPrompt},
		{Role: chat.RoleUser, Content: BuildScenarioPrompt(params)},
	}

	content, err := a.chatCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}

	var gen scenario.Generated
	if err := unmarshalModelJSON(content, &gen); err != nil {
		return nil, fmt.Errorf("failed to parse scenario payload: %w", err)
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	a.logger.Debug("Scenario generated",
		"project", gen.Project.Title,
		"npcs", len(gen.NPCs),
		"kdms", gen.KeyDecisionMakerCount())
	return &gen, nil
}

// ResolveTurn asks the oracle for a turn outcome. Structural
// validation of the payload is left to the turn applier, which
// checks it before any state mutation.
func (a *AnthropicService) ResolveTurn(ctx context.Context, s *session.Session, action engine.Action, card *deck.Card, directives []string) (*engine.TurnOutcome, error) {
	content, err := a.chatCompletion(ctx, BuildTurnMessages(s, action, card, directives))
	if err != nil {
		return nil, err
	}

	var outcome engine.TurnOutcome
	if err := unmarshalModelJSON(content, &outcome); err != nil {
		return nil, fmt.Errorf("failed to parse turn payload: %w", err)
	}
	return &outcome, nil
}

// AnalyzeSession asks the analyst oracle for a post-game report.
func (a *AnthropicService) AnalyzeSession(ctx context.Context, history []chat.Entry) (*report.Report, error) {
	content, err := a.chatCompletion(ctx, BuildAnalysisMessages(history))
	if err != nil {
		return nil, err
	}

	var r report.Report
	if err := unmarshalModelJSON(content, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report payload: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// unmarshalModelJSON decodes a JSON object from model output,
// tolerating markdown code fences and surrounding prose.
func unmarshalModelJSON(content string, v any) error {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	// Fall back to the outermost braces when the model added prose.
	if !strings.HasPrefix(content, "{") {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return fmt.Errorf("no JSON object found in model output")
		}
		content = content[start : end+1]
	}

	return json.Unmarshal([]byte(content), v)
}
