package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealcraft/sales-engine/pkg/chat"
)

// Stage is the sales stage of a session. Stages normally advance
// forward through derivation from opportunity state; an explicit
// oracle override may set any stage.
type Stage string

const (
	StageDiscovery  Stage = "Discovery"
	StageValidation Stage = "Validation"
	StageClosing    Stage = "Closing"
)

// Rank orders stages for forward-progress checks.
// Unknown stages rank below Discovery.
func (s Stage) Rank() int {
	switch s {
	case StageDiscovery:
		return 1
	case StageValidation:
		return 2
	case StageClosing:
		return 3
	}
	return 0
}

// Status is the terminal status of a session. A session is mutable
// only while Status is StatusActive.
type Status string

const (
	StatusActive     Status = "active"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
	StatusNoDecision Status = "no_decision"
)

func (s Status) Terminal() bool {
	return s != StatusActive
}

// Mode selects the resource budget and difficulty profile.
type Mode string

const (
	ModeQuick    Mode = "quick"
	ModeDetailed Mode = "detailed"
)

// Per-mode parameters. Detailed mode doubles the action budget but
// halves all positive trust gains.
const (
	QuickActionPoints    = 10
	DetailedActionPoints = 20

	QuickMultiplier    = 1.0
	DetailedMultiplier = 0.5

	DefaultMaxRounds       = 3
	InitialSolutionQuality = 10
)

// TrustCap is the round-dependent ceiling on NPC trust.
// Round 1 caps at 2, round 2 at 4, round 3 and later at 5.
// The pre-game round (0) uses the round-1 cap.
func TrustCap(round int) float64 {
	switch {
	case round <= 1:
		return 2
	case round == 2:
		return 4
	default:
		return 5
	}
}

// Project is the deal the player is pursuing. OrgDescriptionStages
// holds three paragraphs of customer-organization background, one
// disclosed at the start of each round.
type Project struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Summary              string   `json:"summary"`
	OrgDescriptionStages []string `json:"org_description_stages"`
}

// Session is the complete state of one playthrough. It is owned by
// the caller and passed whole on every engine call; the engine never
// holds it between invocations.
type Session struct {
	ID                   uuid.UUID       `json:"id"`
	Language             string          `json:"language"`
	Mode                 Mode            `json:"game_mode"`
	DifficultyMultiplier float64         `json:"difficulty_multiplier"`
	CompanyProfile       string          `json:"company_profile"`
	Project              Project         `json:"project"`
	Stage                Stage           `json:"stage"`
	Round                int             `json:"round"` // 0 until the session is started
	MaxRounds            int             `json:"max_rounds"`
	ActionPoints         int             `json:"action_points"`
	MaxActionPoints      int             `json:"max_action_points"`
	Status               Status          `json:"status"`
	NPCs                 NPCList         `json:"npcs"`
	Opportunities        OpportunityList `json:"opportunities"`
	Solution             Solution        `json:"solution"`
	History              []chat.Entry    `json:"history"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Clone returns a deep copy. Engine transforms operate on a clone so
// the caller's prior Session is never mutated, and errors leave no
// partial state behind.
func (s *Session) Clone() *Session {
	out := *s
	out.NPCs = s.NPCs.Clone()
	out.Opportunities = s.Opportunities.Clone()
	out.Solution = s.Solution.Clone()
	out.History = make([]chat.Entry, len(s.History))
	copy(out.History, s.History)
	if s.Project.OrgDescriptionStages != nil {
		out.Project.OrgDescriptionStages = make([]string, len(s.Project.OrgDescriptionStages))
		copy(out.Project.OrgDescriptionStages, s.Project.OrgDescriptionStages)
	}
	return &out
}

// DeriveStage computes the stage from aggregate opportunity status:
// any achieved opportunity means Closing, else any revealed means
// Validation, else Discovery.
func (s *Session) DeriveStage() Stage {
	achieved, revealed := false, false
	for _, o := range s.Opportunities.All() {
		switch o.Status {
		case OpportunityAchieved:
			achieved = true
		case OpportunityRevealed:
			revealed = true
		}
	}
	switch {
	case achieved:
		return StageClosing
	case revealed:
		return StageValidation
	default:
		return StageDiscovery
	}
}

// OrgDisclosure returns the organization background paragraph for the
// given round, or "" when none exists. Round 1 maps to index 0.
func (s *Session) OrgDisclosure(round int) string {
	idx := round - 1
	if idx < 0 || idx >= len(s.Project.OrgDescriptionStages) {
		return ""
	}
	return s.Project.OrgDescriptionStages[idx]
}
