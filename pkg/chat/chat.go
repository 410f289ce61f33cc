package chat

import "time"

const (
	RoleUser   = "user"      // The player
	RoleAgent  = "assistant" // An NPC speaking
	RoleSystem = "system"    // Narrator, round announcements, org intel
)

// Entry types stored in Metadata.Type.
const (
	EntryDialogue  = "dialogue"
	EntryNarrative = "narrative"
	EntrySystem    = "system"
)

// Metadata carries structured attribution for a log entry.
// All fields are optional; dialogue entries carry the NPC and the
// action card that provoked them, narrative entries carry visual cues.
type Metadata struct {
	Type           string   `json:"type,omitempty"`
	NPCID          string   `json:"npc_id,omitempty"`
	ActionCardID   string   `json:"action_card_id,omitempty"`
	ActionCardName string   `json:"action_card_name,omitempty"`
	VisualCues     []string `json:"visual_cues,omitempty"`
}

// Entry is a single record in a session's append-only history log.
// Roles follow the standard LLM convention so history can be replayed
// directly into oracle prompts.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// NewDialogue builds an assistant-role entry for an NPC line.
func NewDialogue(npcID, content, cardID, cardName string) Entry {
	return Entry{
		Role:      RoleAgent,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata: &Metadata{
			Type:           EntryDialogue,
			NPCID:          npcID,
			ActionCardID:   cardID,
			ActionCardName: cardName,
		},
	}
}

// NewNarrative builds a system-role entry for turn narration.
func NewNarrative(content string, visualCues []string) Entry {
	return Entry{
		Role:      RoleSystem,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata: &Metadata{
			Type:       EntryNarrative,
			VisualCues: visualCues,
		},
	}
}

// NewSystem builds a system-role entry for engine announcements
// (round starts, org intel disclosures).
func NewSystem(content string) Entry {
	return Entry{
		Role:      RoleSystem,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  &Metadata{Type: EntrySystem},
	}
}
