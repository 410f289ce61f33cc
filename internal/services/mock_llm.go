package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/report"
	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// MockLLM is a configurable LLMService for tests and local play
// without an API key. Behavior is overridden per call via the func
// fields; unset fields return canned, contract-valid payloads.
type MockLLM struct {
	GenerateScenarioFunc func(ctx context.Context, params scenario.Params) (*scenario.Generated, error)
	ResolveTurnFunc      func(ctx context.Context, s *session.Session, action engine.Action, card *deck.Card, directives []string) (*engine.TurnOutcome, error)
	AnalyzeSessionFunc   func(ctx context.Context, history []chat.Entry) (*report.Report, error)

	// Call tracking
	ScenarioCalls []scenario.Params
	TurnCalls     []engine.Action
	AnalysisCalls int

	mu sync.Mutex
}

var _ LLMService = (*MockLLM)(nil)

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateScenario(ctx context.Context, params scenario.Params) (*scenario.Generated, error) {
	m.mu.Lock()
	m.ScenarioCalls = append(m.ScenarioCalls, params)
	fn := m.GenerateScenarioFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, params)
	}
	return DefaultMockScenario(params), nil
}

func (m *MockLLM) ResolveTurn(ctx context.Context, s *session.Session, action engine.Action, card *deck.Card, directives []string) (*engine.TurnOutcome, error) {
	m.mu.Lock()
	m.TurnCalls = append(m.TurnCalls, action)
	fn := m.ResolveTurnFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, s, action, card, directives)
	}
	return DefaultMockOutcome(s, action), nil
}

func (m *MockLLM) AnalyzeSession(ctx context.Context, history []chat.Entry) (*report.Report, error) {
	m.mu.Lock()
	m.AnalysisCalls++
	fn := m.AnalyzeSessionFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, history)
	}
	return DefaultMockReport(), nil
}

// Reset clears call tracking and overrides.
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateScenarioFunc = nil
	m.ResolveTurnFunc = nil
	m.AnalyzeSessionFunc = nil
	m.ScenarioCalls = nil
	m.TurnCalls = nil
	m.AnalysisCalls = 0
}

// SetScenarioError makes scenario generation fail with the given error.
func (m *MockLLM) SetScenarioError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateScenarioFunc = func(context.Context, scenario.Params) (*scenario.Generated, error) {
		return nil, err
	}
}

// SetTurnError makes turn resolution fail with the given error.
func (m *MockLLM) SetTurnError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveTurnFunc = func(context.Context, *session.Session, engine.Action, *deck.Card, []string) (*engine.TurnOutcome, error) {
		return nil, err
	}
}

// DefaultMockScenario returns a contract-valid nine-persona scenario
// derived from the player's inputs.
func DefaultMockScenario(params scenario.Params) *scenario.Generated {
	gen := &scenario.Generated{
		Project: scenario.Project{
			Title:   fmt.Sprintf("%s Modernization at Meridian Logistics", params.Product),
			Summary: fmt.Sprintf("Meridian Logistics, a mid-size %s operator, is evaluating %s after two failed internal initiatives.", params.Target, params.Product),
			OrgDescriptionStages: []string{
				"Meridian Logistics runs regional freight with 800 employees and a public commitment to digital transformation.",
				"Internally, operations and IT blame each other for the stalled rollout of the last vendor's platform.",
				"The CFO has quietly frozen discretionary spend; any deal this quarter needs a bulletproof ROI story.",
			},
		},
	}

	type seed struct {
		name   string
		role   session.Role
		title  string
		gender string
		trust  float64
		agenda string
		kdm    bool
	}
	seeds := []seed{
		{"Diane Fletcher", session.RoleEconomicBuyer, "VP of Operations", "Female", 1, "Needs a visible win before the board review in Q4.", true},
		{"Marcus Webb", session.RoleTechnicalBuyer, "Director of IT", "Male", 0, "Was burned by the last vendor and will block anything he cannot audit.", true},
		{"Elena Ruiz", session.RoleCoach, "Operations Manager", "Female", 2, "Wants the project to succeed so she can move off night-shift scheduling.", true},
		{"Tom Garrity", session.RoleAntiChampion, "Senior Systems Analyst", "Male", 0, "Built the in-house tool this would replace.", false},
		{"Priya Nair", session.RoleStaff, "Dispatch Lead", "Female", 1, "Overworked; cares only about not adding steps to her day.", false},
		{"Sam Okafor", session.RoleStaff, "Warehouse Supervisor", "Male", 1, "Wants headcount, not software.", false},
		{"Janet Kowalski", session.RoleGatekeeper, "Executive Assistant", "Female", 1, "Screens everything that reaches Diane's calendar.", false},
		{"Rick Doyle", session.RoleStaff, "Fleet Coordinator", "Male", 2, "Will say yes to anyone who listens to his route-planning complaints.", false},
		{"Ahmed Hassan", session.RoleStaff, "Finance Analyst", "Male", 1, "Quietly tracks every vendor quote for the CFO.", false},
	}
	for _, sd := range seeds {
		gen.NPCs = append(gen.NPCs, scenario.Persona{
			Name:         sd.name,
			Role:         sd.role,
			Title:        sd.title,
			Gender:       sd.gender,
			Personality:  "Professional, guarded at first.",
			Trust:        sd.trust,
			HiddenAgenda: sd.agenda,
			Dialogues: []string{
				"We're pretty busy this quarter.",
				"Send over some material and we'll take a look.",
				"The last rollout didn't go the way anyone hoped.",
				"What would this actually change for my team day to day?",
				"Between us, the budget conversation is more political than it looks.",
				"If you can get Diane and Marcus in the same room, that's half the battle.",
			},
			AvatarPrompt:       fmt.Sprintf("Corporate portrait of %s, %s", sd.name, sd.title),
			IsKeyDecisionMaker: sd.kdm,
		})
	}
	return gen
}

// DefaultMockOutcome returns a modest positive reaction from the
// action's target, or from the first NPC when no target was named.
func DefaultMockOutcome(s *session.Session, action engine.Action) *engine.TurnOutcome {
	targetID := action.TargetNPCID
	if targetID == "" && s.NPCs.Len() > 0 {
		targetID = s.NPCs.All()[0].ID
	}

	outcome := &engine.TurnOutcome{
		Narrative:  "The conversation stays cordial. Nothing is promised, but the door is open.",
		NPCUpdates: []engine.NPCUpdate{},
	}
	if targetID != "" {
		outcome.NPCUpdates = append(outcome.NPCUpdates, engine.NPCUpdate{
			NPCID:       targetID,
			TrustChange: 1,
			Mood:        "Neutral",
			Dialogue:    "Alright, I'm listening. What exactly are you proposing?",
		})
	}
	return outcome
}

// DefaultMockReport returns a contract-valid post-game report.
func DefaultMockReport() *report.Report {
	return &report.Report{
		Scores: report.Scores{Logic: 72, Empathy: 65, Closing: 58},
		FeedbackMD: "## Session Review\n\nSolid discovery work early, but the close came before the " +
			"technical buyer was on side. Next time, confirm trust with every decision maker before demoing.",
		KeyNodes: []report.KeyNode{
			{Round: 1, ActionName: "Coffee Chat", NPCName: "Elena Ruiz", Result: "Positive", Description: "Built an internal coach early."},
			{Round: 3, ActionName: "Product Demo", NPCName: "Marcus Webb", Result: "Negative", Description: "Demoed before addressing audit concerns."},
		},
		TrustTrends: []report.TrustTrend{
			{Round: 1, NPCName: "Elena Ruiz", Trust: 2},
			{Round: 2, NPCName: "Elena Ruiz", Trust: 3},
			{Round: 3, NPCName: "Marcus Webb", Trust: 1},
		},
	}
}
