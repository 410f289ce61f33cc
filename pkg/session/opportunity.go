package session

import "encoding/json"

// OpportunityStatus tracks the lifecycle of a sales need:
// unrevealed -> revealed -> achieved.
type OpportunityStatus string

const (
	OpportunityUnrevealed OpportunityStatus = "unrevealed"
	OpportunityRevealed   OpportunityStatus = "revealed"
	OpportunityAchieved   OpportunityStatus = "achieved"
)

func (s OpportunityStatus) Valid() bool {
	switch s {
	case OpportunityUnrevealed, OpportunityRevealed, OpportunityAchieved:
		return true
	}
	return false
}

// Requirement gates an opportunity on a stakeholder's trust.
type Requirement struct {
	NPCID    string  `json:"npc_id"`
	MinTrust float64 `json:"min_trust"`
}

// Opportunity is a discoverable, then achievable, sales need.
// DiscoveredAtRound is set once, on the first transition away from
// unrevealed, and never changes afterward. Zero means undiscovered.
type Opportunity struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Status            OpportunityStatus `json:"status"`
	Requirements      []Requirement     `json:"requirements"`
	DiscoveredAtRound int               `json:"discovered_at,omitempty"`
}

// Requires reports whether this opportunity's requirements reference
// the given NPC.
func (o *Opportunity) Requires(npcID string) bool {
	for _, r := range o.Requirements {
		if r.NPCID == npcID {
			return true
		}
	}
	return false
}

// OpportunityList is an insertion-ordered collection of opportunities
// with O(1) lookup by id. It only ever grows.
type OpportunityList struct {
	items []Opportunity
	index map[string]int
}

func NewOpportunityList(opps ...Opportunity) OpportunityList {
	var l OpportunityList
	for _, o := range opps {
		l.Add(o)
	}
	return l
}

// Add appends an opportunity. A duplicate id replaces the existing
// entry in place.
func (l *OpportunityList) Add(o Opportunity) {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if i, ok := l.index[o.ID]; ok {
		l.items[i] = o
		return
	}
	l.index[o.ID] = len(l.items)
	l.items = append(l.items, o)
}

func (l *OpportunityList) Get(id string) (Opportunity, bool) {
	i, ok := l.index[id]
	if !ok {
		return Opportunity{}, false
	}
	return l.items[i], true
}

func (l *OpportunityList) Update(id string, o Opportunity) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	o.ID = id
	l.items[i] = o
	return true
}

// All returns opportunities in insertion order. The returned slice is
// the backing store; callers must not modify it.
func (l *OpportunityList) All() []Opportunity {
	return l.items
}

func (l *OpportunityList) Len() int {
	return len(l.items)
}

// LinkedTo returns the first opportunity whose requirements reference
// the given NPC id, in insertion order.
func (l *OpportunityList) LinkedTo(npcID string) (Opportunity, bool) {
	for _, o := range l.items {
		if o.Requires(npcID) {
			return o, true
		}
	}
	return Opportunity{}, false
}

func (l OpportunityList) Clone() OpportunityList {
	out := OpportunityList{}
	for _, o := range l.items {
		c := o
		if o.Requirements != nil {
			c.Requirements = make([]Requirement, len(o.Requirements))
			copy(c.Requirements, o.Requirements)
		}
		out.Add(c)
	}
	return out
}

func (l OpportunityList) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l *OpportunityList) UnmarshalJSON(data []byte) error {
	var items []Opportunity
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = NewOpportunityList(items...)
	return nil
}
