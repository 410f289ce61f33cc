package engine

import (
	"github.com/dealcraft/sales-engine/pkg/session"
)

// Moods the turn oracle may assign to an NPC.
var Moods = []string{"Happy", "Neutral", "Angry", "Thinking", "Surprised"}

// Action is the player's declared move for one turn.
type Action struct {
	CardID      string `json:"card_id"`
	CardName    string `json:"card_name,omitempty"`
	TargetNPCID string `json:"target_npc_id,omitempty"`
}

// NPCUpdate is one stakeholder's reaction in a turn outcome.
type NPCUpdate struct {
	NPCID       string  `json:"npc_id"`
	TrustChange float64 `json:"trust_change"`
	Mood        string  `json:"mood_update,omitempty"`
	Dialogue    string  `json:"dialogue,omitempty"`
}

// StageTransition is an explicit stage override from the oracle. It
// bypasses stage derivation when ShouldAdvance is set and a stage is
// named.
type StageTransition struct {
	ShouldAdvance bool   `json:"should_advance"`
	NextStageName string `json:"next_stage_name,omitempty"`
}

// OpportunityUpdate upserts an opportunity. Status is always applied;
// title, description and requirements only when present.
type OpportunityUpdate struct {
	ID           string                    `json:"id"`
	Status       session.OpportunityStatus `json:"status"`
	Title        string                    `json:"title,omitempty"`
	Description  string                    `json:"description,omitempty"`
	Requirements []session.Requirement     `json:"requirements,omitempty"`
}

// SolutionUpdate adjusts the solution quality and optionally records
// a new feature.
type SolutionUpdate struct {
	QualityChange float64 `json:"quality_change"`
	NewFeature    string  `json:"new_feature,omitempty"`
}

// TurnOutcome is the typed payload the turn oracle returns. Optional
// fields that are absent are skipped during application; fields the
// engine does not recognize are ignored by the JSON decoder.
type TurnOutcome struct {
	Narrative          string              `json:"narrative"`
	NPCUpdates         []NPCUpdate         `json:"npc_updates"`
	GameStatusUpdate   session.Status      `json:"game_status_update,omitempty"`
	StageTransition    *StageTransition    `json:"stage_transition,omitempty"`
	OpportunityUpdates []OpportunityUpdate `json:"opportunity_updates,omitempty"`
	SolutionUpdate     *SolutionUpdate     `json:"solution_update,omitempty"`
	VisualCues         []string            `json:"visual_cues,omitempty"`
}

// Validate checks the structural contract of the payload. It is
// called before any state is touched, so a failure leaves the prior
// session unchanged.
func (o *TurnOutcome) Validate() error {
	if o == nil {
		return validationErr("payload", "missing turn outcome")
	}
	if o.Narrative == "" {
		return validationErr("narrative", "required field is empty")
	}
	if o.NPCUpdates == nil {
		return validationErr("npc_updates", "required field is missing")
	}
	for i, u := range o.NPCUpdates {
		if u.NPCID == "" {
			return validationErr("npc_updates", "entry %d has no npc_id", i)
		}
		if u.Mood != "" && !validMood(u.Mood) {
			return validationErr("npc_updates", "entry %d has unknown mood %q", i, u.Mood)
		}
	}
	if o.GameStatusUpdate != "" {
		switch o.GameStatusUpdate {
		case session.StatusActive, session.StatusWon, session.StatusLost, session.StatusNoDecision:
		default:
			return validationErr("game_status_update", "unknown status %q", o.GameStatusUpdate)
		}
	}
	if st := o.StageTransition; st != nil && st.ShouldAdvance && st.NextStageName != "" {
		if session.Stage(st.NextStageName).Rank() == 0 {
			return validationErr("stage_transition", "unknown stage %q", st.NextStageName)
		}
	}
	for i, u := range o.OpportunityUpdates {
		if u.ID == "" {
			return validationErr("opportunity_updates", "entry %d has no id", i)
		}
		if !u.Status.Valid() {
			return validationErr("opportunity_updates", "entry %d has unknown status %q", i, u.Status)
		}
	}
	return nil
}

func validMood(mood string) bool {
	for _, m := range Moods {
		if mood == m {
			return true
		}
	}
	return false
}
