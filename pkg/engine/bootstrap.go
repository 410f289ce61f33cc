package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// NewSession builds the initial session from player inputs and the
// scenario oracle's generated content. The scenario payload is
// validated before any field is read. The returned session sits in
// the pre-game round 0; the first AdvanceRound call starts round 1.
func NewSession(params scenario.Params, gen *scenario.Generated, selectAvatar scenario.AvatarSelector) (*session.Session, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if gen == nil {
		return nil, fmt.Errorf("missing generated scenario")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	maxActionPoints := session.QuickActionPoints
	multiplier := session.QuickMultiplier
	if params.Mode == session.ModeDetailed {
		maxActionPoints = session.DetailedActionPoints
		multiplier = session.DetailedMultiplier
	}

	now := time.Now().UTC()
	s := &session.Session{
		ID:                   uuid.New(),
		Language:             params.Language,
		Mode:                 params.Mode,
		DifficultyMultiplier: multiplier,
		CompanyProfile:       fmt.Sprintf("Industry: %s. Product: %s", params.Industry, params.Product),
		Project: session.Project{
			ID:                   "gen_" + uuid.NewString()[:8],
			Title:                gen.Project.Title,
			Summary:              gen.Project.Summary,
			OrgDescriptionStages: gen.Project.OrgDescriptionStages,
		},
		Stage:           session.StageDiscovery,
		Round:           0,
		MaxRounds:       session.DefaultMaxRounds,
		ActionPoints:    maxActionPoints,
		MaxActionPoints: maxActionPoints,
		Status:          session.StatusActive,
		Opportunities:   session.NewOpportunityList(),
		Solution:        session.NewSolution(),
		History:         make([]chat.Entry, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for i, p := range gen.NPCs {
		avatar := ""
		if selectAvatar != nil {
			avatar = selectAvatar(p.Role, p.Gender)
		}
		s.NPCs.Add(session.NPC{
			ID:                 fmt.Sprintf("npc_%d", i+1),
			Role:               p.Role,
			Title:              p.Title,
			Name:               p.Name,
			Gender:             p.Gender,
			Avatar:             avatar,
			AvatarPrompt:       p.AvatarPrompt,
			Personality:        p.Personality,
			Trust:              p.Trust,
			HiddenAgenda:       p.HiddenAgenda,
			Dialogues:          p.Dialogues,
			Tier:               session.TierForTrust(p.Trust),
			IsKeyDecisionMaker: p.IsKeyDecisionMaker,
		})
	}

	return s, nil
}
