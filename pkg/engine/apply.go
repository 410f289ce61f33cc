package engine

import (
	"log/slog"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// Applier applies validated turn outcomes to sessions. It holds no
// per-session state; a single Applier serves any number of sessions.
type Applier struct {
	logger *slog.Logger
}

func NewApplier(logger *slog.Logger) *Applier {
	return &Applier{logger: logger}
}

// Apply resolves one turn: it validates the oracle payload, then
// produces a new session with the action cost deducted and the
// payload's trust, opportunity, solution, stage, status and history
// effects applied under the engine's numeric invariants. The input
// session is never mutated; on error it is returned unchanged
// upstream and no partial state exists.
func (a *Applier) Apply(s *session.Session, action Action, outcome *TurnOutcome, cost int) (*session.Session, error) {
	if s.Status.Terminal() {
		return nil, ErrSessionOver
	}
	if err := outcome.Validate(); err != nil {
		return nil, err
	}

	next := s.Clone()

	a.deductActionPoints(next, cost)
	primary := a.resolvePrimaryTarget(action, outcome)
	a.applyTrust(next, outcome.NPCUpdates)
	a.upsertOpportunities(next, outcome.OpportunityUpdates)
	a.applySolution(next, outcome.SolutionUpdate)
	a.applyStageAndStatus(next, outcome)
	a.appendHistory(next, action, outcome)

	if a.logger != nil {
		a.logger.Debug("Turn applied",
			"session_id", next.ID.String(),
			"round", next.Round,
			"card_id", action.CardID,
			"primary_npc", primary,
			"action_points", next.ActionPoints,
			"stage", next.Stage,
			"status", next.Status)
	}
	return next, nil
}

// deductActionPoints spends the card cost, clamping at zero.
func (a *Applier) deductActionPoints(s *session.Session, cost int) {
	s.ActionPoints -= cost
	if s.ActionPoints < 0 {
		s.ActionPoints = 0
	}
}

// resolvePrimaryTarget returns the explicit target if the player
// declared one, otherwise the first updated NPC that spoke. Used for
// log attribution only; rule gating never depends on it.
func (a *Applier) resolvePrimaryTarget(action Action, outcome *TurnOutcome) string {
	if action.TargetNPCID != "" {
		return action.TargetNPCID
	}
	for _, u := range outcome.NPCUpdates {
		if u.Dialogue != "" {
			return u.NPCID
		}
	}
	return ""
}

// applyTrust applies each NPC update: the difficulty multiplier
// dampens positive deltas only, the result is clamped to the current
// round's trust cap, and the standing tier is recomputed. Updates for
// unknown NPC ids are skipped.
func (a *Applier) applyTrust(s *session.Session, updates []NPCUpdate) {
	trustCap := session.TrustCap(s.Round)
	for _, u := range updates {
		npc, ok := s.NPCs.Get(u.NPCID)
		if !ok {
			if a.logger != nil {
				a.logger.Warn("NPC update references unknown id",
					"npc_id", u.NPCID, "session_id", s.ID.String())
			}
			continue
		}

		change := u.TrustChange
		if change > 0 {
			change *= s.DifficultyMultiplier
		}
		trust := npc.Trust + change
		if trust < 0 {
			trust = 0
		}
		if trust > trustCap {
			trust = trustCap
		}

		npc.Trust = trust
		npc.Tier = session.TierForTrust(trust)
		s.NPCs.Update(npc.ID, npc)
	}
}

// upsertOpportunities merges opportunity updates. Existing entries
// have status overwritten and optional fields merged when present;
// new entries are inserted with defaults. DiscoveredAtRound is set
// to the current round on the first transition out of unrevealed and
// never touched again.
func (a *Applier) upsertOpportunities(s *session.Session, updates []OpportunityUpdate) {
	for _, u := range updates {
		existing, ok := s.Opportunities.Get(u.ID)
		if ok {
			existing.Status = u.Status
			if u.Title != "" {
				existing.Title = u.Title
			}
			if u.Description != "" {
				existing.Description = u.Description
			}
			if u.Requirements != nil {
				existing.Requirements = u.Requirements
			}
			if u.Status == session.OpportunityRevealed && existing.DiscoveredAtRound == 0 {
				existing.DiscoveredAtRound = s.Round
			}
			s.Opportunities.Update(u.ID, existing)
			continue
		}

		opp := session.Opportunity{
			ID:           u.ID,
			Title:        u.Title,
			Description:  u.Description,
			Status:       u.Status,
			Requirements: u.Requirements,
		}
		if opp.Title == "" {
			opp.Title = "New Opportunity"
		}
		if opp.Requirements == nil {
			opp.Requirements = make([]session.Requirement, 0)
		}
		if u.Status == session.OpportunityRevealed || u.Status == session.OpportunityAchieved {
			opp.DiscoveredAtRound = s.Round
		}
		s.Opportunities.Add(opp)
	}
}

// applySolution folds a solution delta in: quality clamped to
// [0,100], a history event appended, and the feature recorded when
// named.
func (a *Applier) applySolution(s *session.Session, update *SolutionUpdate) {
	if update == nil {
		return
	}
	s.Solution.QualityScore = session.ClampQuality(s.Solution.QualityScore + update.QualityChange)

	action := update.NewFeature
	if action == "" {
		action = "Solution Improved"
	}
	s.Solution.History = append(s.Solution.History, session.SolutionEvent{
		Round:  s.Round,
		Action: action,
	})
	if update.NewFeature != "" {
		s.Solution.Features = append(s.Solution.Features, update.NewFeature)
	}
}

// applyStageAndStatus derives the stage from aggregate opportunity
// state, then applies explicit oracle overrides: a status override
// always wins, and a stage transition with should_advance and a named
// stage overwrites the derivation. Override ordering intentionally
// permits a later derivation to compute an earlier stage than a
// previously overridden one; the engine does not guard against that.
func (a *Applier) applyStageAndStatus(s *session.Session, outcome *TurnOutcome) {
	s.Stage = s.DeriveStage()

	if outcome.GameStatusUpdate != "" {
		s.Status = outcome.GameStatusUpdate
	}
	if st := outcome.StageTransition; st != nil && st.ShouldAdvance && st.NextStageName != "" {
		s.Stage = session.Stage(st.NextStageName)
	}
}

// appendHistory writes this turn's log entries: one dialogue entry
// per speaking NPC in update order, then the narrative entry with its
// visual cues.
func (a *Applier) appendHistory(s *session.Session, action Action, outcome *TurnOutcome) {
	for _, u := range outcome.NPCUpdates {
		if u.Dialogue == "" {
			continue
		}
		s.History = append(s.History, chat.NewDialogue(u.NPCID, u.Dialogue, action.CardID, action.CardName))
	}
	if outcome.Narrative != "" {
		s.History = append(s.History, chat.NewNarrative(outcome.Narrative, outcome.VisualCues))
	}
}
