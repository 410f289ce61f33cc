package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealcraft/sales-engine/pkg/session"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, d.Cards())

	seen := make(map[string]bool)
	for _, c := range d.Cards() {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Name)
		assert.Greater(t, c.Cost, 0, "card %s", c.ID)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}

	card, ok := d.Get("coffee_chat")
	require.True(t, ok)
	assert.Equal(t, TypeInteraction, card.Type)
	assert.True(t, card.TargetRequired)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty deck", "cards: []"},
		{"missing id", "cards:\n  - name: No ID\n    cost: 1"},
		{"duplicate id", "cards:\n  - id: a\n    cost: 1\n  - id: a\n    cost: 2"},
		{"bad yaml", "cards: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestCostFor(t *testing.T) {
	c := Card{Cost: 3, CostPerTarget: 1}
	assert.Equal(t, 3, c.CostFor(0))
	assert.Equal(t, 3, c.CostFor(1))
	assert.Equal(t, 5, c.CostFor(3))

	flat := Card{Cost: 2}
	assert.Equal(t, 2, flat.CostFor(3), "no per-target cost means flat pricing")
}

func TestAvailableIn(t *testing.T) {
	anyStage := Card{}
	assert.True(t, anyStage.AvailableIn(session.StageDiscovery))
	assert.True(t, anyStage.AvailableIn(session.StageClosing))

	late := Card{StageUnlock: []session.Stage{session.StageValidation, session.StageClosing}}
	assert.False(t, late.AvailableIn(session.StageDiscovery))
	assert.True(t, late.AvailableIn(session.StageValidation))
}

func TestForStage(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	discovery := d.ForStage(session.StageDiscovery)
	closing := d.ForStage(session.StageClosing)
	assert.NotEmpty(t, discovery)
	assert.NotEmpty(t, closing)

	// Demonstration cards unlock after Discovery.
	for _, c := range discovery {
		assert.NotEqual(t, "final_proposal", c.ID, "closing cards must not appear in Discovery")
	}
}
