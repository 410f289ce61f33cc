package services

import (
	"context"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/report"
	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// Message is a single prompt message sent to the LLM API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMService is the external generative oracle. The engine consumes
// its typed output and never generates prose itself. Calls are not
// retried here; upstream failures surface to the caller and the
// session is not advanced.
type LLMService interface {
	// GenerateScenario produces the project narrative and NPC roster
	// for a new session.
	GenerateScenario(ctx context.Context, params scenario.Params) (*scenario.Generated, error)

	// ResolveTurn produces the turn outcome for a player action,
	// steered by the engine's directives.
	ResolveTurn(ctx context.Context, s *session.Session, action engine.Action, card *deck.Card, directives []string) (*engine.TurnOutcome, error)

	// AnalyzeSession produces the post-game report from a finished
	// session's history.
	AnalyzeSession(ctx context.Context, history []chat.Entry) (*report.Report, error)
}
