package engine

import (
	"fmt"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// AdvanceRound moves a session to its next round: the round counter
// increments and the action-point budget resets. When the round
// budget is exhausted without an explicit win or loss, the session
// ends as no_decision and no further narrative is appended.
// Otherwise a system log entry announces the round, carrying the
// round's organization disclosure when one exists.
//
// Starting a freshly bootstrapped session is the same operation: the
// pre-game round 0 advances to round 1 and discloses the first
// organization paragraph.
func AdvanceRound(s *session.Session) (*session.Session, error) {
	if s.Status.Terminal() {
		return nil, ErrSessionOver
	}

	next := s.Clone()
	next.Round++
	next.ActionPoints = next.MaxActionPoints

	if next.Round > next.MaxRounds {
		next.Status = session.StatusNoDecision
		return next, nil
	}

	content := fmt.Sprintf("--- Round %d Started ---", next.Round)
	if org := next.OrgDisclosure(next.Round); org != "" {
		content += "\n\n[ORGANIZATION INTEL]: " + org
	}
	next.History = append(next.History, chat.NewSystem(content))

	return next, nil
}
