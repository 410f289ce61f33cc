package session

import "encoding/json"

// Role categorizes an NPC within the customer organization.
type Role string

const (
	RoleEconomicBuyer  Role = "Economic_Buyer"
	RoleTechnicalBuyer Role = "Technical_Buyer"
	RoleCoach          Role = "Coach"
	RoleAntiChampion   Role = "Anti_Champion"
	RoleStaff          Role = "Staff"
	RoleGatekeeper     Role = "Gatekeeper"
)

// Roles lists all valid role categories.
var Roles = []Role{
	RoleEconomicBuyer,
	RoleTechnicalBuyer,
	RoleCoach,
	RoleAntiChampion,
	RoleStaff,
	RoleGatekeeper,
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Tier is the derived standing of an NPC toward the player.
type Tier string

const (
	TierHostile  Tier = "Hostile"
	TierNeutral  Tier = "Neutral"
	TierFriendly Tier = "Friendly"
)

// TierForTrust maps a trust score to a standing tier on the 0-5 scale:
// >= 4 Friendly, <= 1 Hostile, otherwise Neutral.
func TierForTrust(trust float64) Tier {
	switch {
	case trust >= 4:
		return TierFriendly
	case trust <= 1:
		return TierHostile
	default:
		return TierNeutral
	}
}

// NPC is a simulated stakeholder. Persona fields (name, personality,
// hidden agenda, preset dialogues, avatar) are written once at
// bootstrap and treated as read-only by the engine; only Trust and
// the derived Tier change during play.
type NPC struct {
	ID                 string   `json:"id"`
	Role               Role     `json:"role_type"`
	Title              string   `json:"title"`
	Name               string   `json:"name"`
	Gender             string   `json:"gender"`
	Avatar             string   `json:"avatar"`
	AvatarPrompt       string   `json:"avatar_prompt"`
	Personality        string   `json:"personality"`
	Trust              float64  `json:"trust_score"`
	HiddenAgenda       string   `json:"hidden_agenda"`
	Dialogues          []string `json:"dialogues,omitempty"`
	Tier               Tier     `json:"status"`
	IsKeyDecisionMaker bool     `json:"is_key_decision_maker"`
}

// NPCList is an insertion-ordered collection of NPCs with O(1) lookup
// by id. It marshals as a plain JSON array so the wire format stays
// an ordered list.
type NPCList struct {
	items []NPC
	index map[string]int
}

func NewNPCList(npcs ...NPC) NPCList {
	var l NPCList
	for _, n := range npcs {
		l.Add(n)
	}
	return l
}

// Add appends an NPC. An NPC with a duplicate id replaces the
// existing entry in place, preserving its position.
func (l *NPCList) Add(n NPC) {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if i, ok := l.index[n.ID]; ok {
		l.items[i] = n
		return
	}
	l.index[n.ID] = len(l.items)
	l.items = append(l.items, n)
}

// Get returns the NPC with the given id.
func (l *NPCList) Get(id string) (NPC, bool) {
	i, ok := l.index[id]
	if !ok {
		return NPC{}, false
	}
	return l.items[i], true
}

// Update replaces the NPC with the given id, keeping its position.
// Returns false if the id is unknown.
func (l *NPCList) Update(id string, n NPC) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	n.ID = id
	l.items[i] = n
	return true
}

// All returns the NPCs in insertion order. The returned slice is the
// backing store; callers must not modify it.
func (l *NPCList) All() []NPC {
	return l.items
}

func (l *NPCList) Len() int {
	return len(l.items)
}

func (l NPCList) Clone() NPCList {
	out := NPCList{}
	for _, n := range l.items {
		c := n
		if n.Dialogues != nil {
			c.Dialogues = make([]string, len(n.Dialogues))
			copy(c.Dialogues, n.Dialogues)
		}
		out.Add(c)
	}
	return out
}

func (l NPCList) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l *NPCList) UnmarshalJSON(data []byte) error {
	var items []NPC
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = NewNPCList(items...)
	return nil
}
