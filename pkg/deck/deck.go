// Package deck holds the playable action cards. The default deck
// ships embedded with the binary; callers resolve a card's cost and
// stage availability here before asking the engine to apply a turn.
package deck

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dealcraft/sales-engine/pkg/session"
)

// CardType groups cards by their gameplay effect.
type CardType string

const (
	TypeInteraction CardType = "Interaction" // build trust, gather info
	TypeOpportunity CardType = "Opportunity" // formally identify a need
	TypeScheme      CardType = "Scheme"      // tailor the solution
	TypeDemonstrate CardType = "Demonstrate" // pitch the solution
	TypeSystem      CardType = "System"      // special effects
)

// Card is one playable action.
type Card struct {
	ID             string          `yaml:"id" json:"id"`
	Type           CardType        `yaml:"type" json:"type"`
	Name           string          `yaml:"name" json:"name"`
	Description    string          `yaml:"description" json:"description"`
	TargetRequired bool            `yaml:"target_required" json:"target_required"`
	StageUnlock    []session.Stage `yaml:"stage_unlock" json:"stage_unlock"`
	Cost           int             `yaml:"cost" json:"cost"`
	CostPerTarget  int             `yaml:"cost_per_target,omitempty" json:"cost_per_target,omitempty"`
}

// CostFor resolves the total action-point cost for the given number
// of targets.
func (c Card) CostFor(targets int) int {
	cost := c.Cost
	if c.CostPerTarget > 0 && targets > 1 {
		cost += c.CostPerTarget * (targets - 1)
	}
	return cost
}

// AvailableIn reports whether the card can be played in the stage.
// Cards with no stage list are always available.
func (c Card) AvailableIn(stage session.Stage) bool {
	if len(c.StageUnlock) == 0 {
		return true
	}
	for _, s := range c.StageUnlock {
		if s == stage {
			return true
		}
	}
	return false
}

//go:embed cards.yaml
var defaultDeckYAML []byte

// Deck is an ordered card collection with id lookup.
type Deck struct {
	cards []Card
	index map[string]int
}

// Default loads the embedded deck.
func Default() (*Deck, error) {
	return Parse(defaultDeckYAML)
}

// Parse builds a deck from YAML card definitions.
func Parse(data []byte) (*Deck, error) {
	var spec struct {
		Cards []Card `yaml:"cards"`
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse deck: %w", err)
	}
	if len(spec.Cards) == 0 {
		return nil, fmt.Errorf("deck has no cards")
	}

	d := &Deck{index: make(map[string]int)}
	for _, c := range spec.Cards {
		if c.ID == "" {
			return nil, fmt.Errorf("deck card %q has no id", c.Name)
		}
		if _, dup := d.index[c.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", c.ID)
		}
		d.index[c.ID] = len(d.cards)
		d.cards = append(d.cards, c)
	}
	return d, nil
}

// Get returns the card with the given id.
func (d *Deck) Get(id string) (Card, bool) {
	i, ok := d.index[id]
	if !ok {
		return Card{}, false
	}
	return d.cards[i], true
}

// Cards returns all cards in deck order.
func (d *Deck) Cards() []Card {
	return d.cards
}

// ForStage returns the cards playable in the given stage, in deck
// order.
func (d *Deck) ForStage(stage session.Stage) []Card {
	var out []Card
	for _, c := range d.cards {
		if c.AvailableIn(stage) {
			out = append(out, c)
		}
	}
	return out
}
