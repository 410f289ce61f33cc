package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

func testParams() scenario.Params {
	return scenario.Params{
		Industry: "SaaS",
		Product:  "Workflow Automation Platform",
		Target:   "Mid-size logistics companies",
		Language: "en",
		Mode:     session.ModeQuick,
	}
}

func testGenerated() *scenario.Generated {
	gen := &scenario.Generated{
		Project: scenario.Project{
			Title:                "Meridian Logistics Deal",
			Summary:              "A mid-size freight operator evaluates automation.",
			OrgDescriptionStages: []string{"public", "internal", "crisis"},
		},
	}
	for i := 0; i < scenario.PersonaCount; i++ {
		role := session.RoleStaff
		kdm := false
		if i < 3 {
			role = session.RoleEconomicBuyer
			kdm = true
		}
		gen.NPCs = append(gen.NPCs, scenario.Persona{
			Name:               fmt.Sprintf("Person %d", i+1),
			Role:               role,
			Title:              "Manager",
			Gender:             "Female",
			Personality:        "Guarded",
			Trust:              1,
			HiddenAgenda:       "Wants a quiet quarter.",
			Dialogues:          []string{"a", "b", "c", "d", "e", "f"},
			IsKeyDecisionMaker: kdm,
		})
	}
	return gen
}

func TestNewSession_QuickMode(t *testing.T) {
	s, err := NewSession(testParams(), testGenerated(), nil)
	require.NoError(t, err)

	assert.Equal(t, session.ModeQuick, s.Mode)
	assert.Equal(t, session.QuickActionPoints, s.ActionPoints)
	assert.Equal(t, session.QuickActionPoints, s.MaxActionPoints)
	assert.Equal(t, session.QuickMultiplier, s.DifficultyMultiplier)
	assert.Equal(t, 0, s.Round, "session starts in the pre-game round")
	assert.Equal(t, session.DefaultMaxRounds, s.MaxRounds)
	assert.Equal(t, session.StageDiscovery, s.Stage)
	assert.Equal(t, session.StatusActive, s.Status)
	assert.Equal(t, session.InitialSolutionQuality, int(s.Solution.QualityScore))
	assert.Empty(t, s.History)
	assert.Equal(t, "Meridian Logistics Deal", s.Project.Title)
	assert.Contains(t, s.CompanyProfile, "SaaS")

	require.Equal(t, scenario.PersonaCount, s.NPCs.Len())
	first, ok := s.NPCs.Get("npc_1")
	require.True(t, ok)
	assert.Equal(t, "Person 1", first.Name)
	assert.True(t, first.IsKeyDecisionMaker)
	assert.Equal(t, session.TierHostile, first.Tier)
	assert.Len(t, first.Dialogues, scenario.DialogueCount)
}

func TestNewSession_DetailedMode(t *testing.T) {
	params := testParams()
	params.Mode = session.ModeDetailed

	s, err := NewSession(params, testGenerated(), nil)
	require.NoError(t, err)
	assert.Equal(t, session.DetailedActionPoints, s.ActionPoints)
	assert.Equal(t, session.DetailedMultiplier, s.DifficultyMultiplier)
}

func TestNewSession_AvatarAssignment(t *testing.T) {
	selector := func(role session.Role, gender string) string {
		return "/avatars/" + string(role) + "_" + gender + ".png"
	}

	s, err := NewSession(testParams(), testGenerated(), selector)
	require.NoError(t, err)
	npc, _ := s.NPCs.Get("npc_1")
	assert.Equal(t, "/avatars/Economic_Buyer_Female.png", npc.Avatar)
}

func TestNewSession_InvalidInputs(t *testing.T) {
	t.Run("missing generated scenario", func(t *testing.T) {
		_, err := NewSession(testParams(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("wrong persona count", func(t *testing.T) {
		gen := testGenerated()
		gen.NPCs = gen.NPCs[:5]
		_, err := NewSession(testParams(), gen, nil)
		assert.Error(t, err)
	})

	t.Run("missing product", func(t *testing.T) {
		params := testParams()
		params.Product = ""
		_, err := NewSession(params, testGenerated(), nil)
		assert.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		params := testParams()
		params.Mode = session.Mode("marathon")
		_, err := NewSession(params, testGenerated(), nil)
		assert.Error(t, err)
	})
}

func TestNewSession_UniqueIDs(t *testing.T) {
	a, err := NewSession(testParams(), testGenerated(), nil)
	require.NoError(t, err)
	b, err := NewSession(testParams(), testGenerated(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
