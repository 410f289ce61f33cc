package engine

import (
	"fmt"
	"strconv"

	"github.com/dealcraft/sales-engine/pkg/session"
)

// Directives computes the advisory constraint strings handed to the
// turn oracle. It reads the session only, iterating NPCs in stored
// order and considering key decision makers alone. Directives steer
// the oracle; the turn applier still re-validates and clamps whatever
// comes back.
func Directives(s *session.Session) []string {
	var directives []string

	for _, npc := range s.NPCs.All() {
		if !npc.IsKeyDecisionMaker {
			continue
		}
		linked, hasLinked := s.Opportunities.LinkedTo(npc.ID)
		trust := formatTrust(npc.Trust)

		// Reveal trigger: trust above 2 moves the deal toward
		// Validation, either by creating an opportunity from the
		// hidden agenda or by revealing a known one.
		if npc.Trust > 2 {
			if !hasLinked {
				directives = append(directives, fmt.Sprintf(
					"CRITICAL RULE [Stage 1->2]: NPC '%s' (%s) has reached Trust %s. You MUST use 'opportunity_updates' to CREATE a new 'revealed' Opportunity based on their hidden agenda. This triggers the transition to Stage 2 (Validation).",
					npc.Name, npc.Role, trust))
			} else if linked.Status == session.OpportunityUnrevealed {
				directives = append(directives, fmt.Sprintf(
					"CRITICAL RULE [Stage 1->2]: NPC '%s' has reached Trust %s. You MUST set existing opportunity '%s' to status 'revealed'.",
					npc.Name, trust, linked.Title))
			}
		}

		// Achieve trigger: trust at 4 or above with a revealed
		// opportunity invites closing when the action fits.
		if npc.Trust >= 4 && hasLinked && linked.Status == session.OpportunityRevealed {
			directives = append(directives, fmt.Sprintf(
				"GAME RULE [Stage 2->3]: NPC '%s' has Trust %s >= 4. If the current action is relevant (e.g. Demonstration), you SHOULD mark opportunity '%s' as 'achieved'. This triggers the transition to Stage 3 (Closing/Won).",
				npc.Name, trust, linked.Title))
		}
	}

	return directives
}

func formatTrust(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
