// Package scenario defines the typed contract with the external
// scenario-generation oracle: the player's inputs and the generated
// project plus NPC personas consumed by session bootstrap.
package scenario

import (
	"fmt"

	"github.com/dealcraft/sales-engine/pkg/session"
)

const (
	// PersonaCount is the exact roster size the oracle must produce:
	// 3 key decision makers and 6 staff/gatekeepers.
	PersonaCount = 9

	// DialogueCount is the exact number of preset lines per persona.
	// Lines 0-1 are guarded (round 1), 2-3 open (round 2),
	// 4-5 candid (round 3).
	DialogueCount = 6
)

// Project is the deal narrative produced by the oracle.
type Project struct {
	Title                string   `json:"title"`
	Summary              string   `json:"summary"`
	OrgDescriptionStages []string `json:"org_description_stages"`
}

// Persona is one generated stakeholder, before it becomes a session
// NPC with an id and avatar.
type Persona struct {
	Name               string       `json:"name"`
	Role               session.Role `json:"role_type"`
	Title              string       `json:"title"`
	Gender             string       `json:"gender"`
	Personality        string       `json:"personality"`
	Trust              float64      `json:"trust_score"`
	HiddenAgenda       string       `json:"hidden_agenda"`
	Dialogues          []string     `json:"dialogues"`
	AvatarPrompt       string       `json:"avatar_prompt"`
	IsKeyDecisionMaker bool         `json:"is_key_decision_maker"`
}

// Generated is the full scenario payload returned by the oracle.
type Generated struct {
	Project Project   `json:"project"`
	NPCs    []Persona `json:"npcs"`
}

// Validate enforces the structural contract before any field is read
// by the bootstrap: exact persona and dialogue counts, known role
// categories, trust within the 0-5 scale, and the three-part org
// description.
func (g *Generated) Validate() error {
	if g.Project.Title == "" {
		return fmt.Errorf("scenario: project title is required")
	}
	if n := len(g.Project.OrgDescriptionStages); n != 3 {
		return fmt.Errorf("scenario: expected 3 org description stages, got %d", n)
	}
	if n := len(g.NPCs); n != PersonaCount {
		return fmt.Errorf("scenario: expected %d personas, got %d", PersonaCount, n)
	}
	for i, p := range g.NPCs {
		if p.Name == "" {
			return fmt.Errorf("scenario: persona %d has no name", i)
		}
		if !p.Role.Valid() {
			return fmt.Errorf("scenario: persona %q has unknown role %q", p.Name, p.Role)
		}
		if p.Trust < 0 || p.Trust > 5 {
			return fmt.Errorf("scenario: persona %q trust %.1f out of range", p.Name, p.Trust)
		}
		if n := len(p.Dialogues); n != DialogueCount {
			return fmt.Errorf("scenario: persona %q has %d dialogues, expected %d", p.Name, n, DialogueCount)
		}
		if p.Gender != "Male" && p.Gender != "Female" {
			return fmt.Errorf("scenario: persona %q has unknown gender %q", p.Name, p.Gender)
		}
	}
	return nil
}

// KeyDecisionMakerCount returns the number of personas flagged as
// key decision makers.
func (g *Generated) KeyDecisionMakerCount() int {
	count := 0
	for _, p := range g.NPCs {
		if p.IsKeyDecisionMaker {
			count++
		}
	}
	return count
}
