package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dealcraft/sales-engine/pkg/chat"
	"github.com/dealcraft/sales-engine/pkg/deck"
	"github.com/dealcraft/sales-engine/pkg/engine"
	"github.com/dealcraft/sales-engine/pkg/scenario"
	"github.com/dealcraft/sales-engine/pkg/session"
)

// GameMasterSystemPrompt drives the per-turn oracle. It explains the
// rules of the simulation and demands structured JSON output.
const GameMasterSystemPrompt = `You are the Game Engine for a B2B Sales Simulator RPG.
Your role is to act as the "Game Master" and simulate the reactions of NPCs and the state of the sales process.

**Core Gameplay Mechanics:**
1. **Turn-Based & Action Points**: The game is played in rounds. Players have limited Action Points per round. Different cards cost different amounts of points.
2. **Card Types & Effects**:
   - **Interaction**: Builds trust and gathers info. Success depends on matching the card to the NPC's role and personality. Can trigger Opportunity Discovery if trust is high enough with a Key Decision Maker.
   - **Opportunity**: Formally identifies a sales opportunity. Prerequisite: trust > 2 with the relevant stakeholder.
   - **Scheme**: Tailors the solution to revealed opportunities, raising Solution Quality.
   - **Demonstrate**: Pitches the solution. High cost. Success depends on Solution Quality AND NPC Trust >= 4.
   - **System**: Special game effects.
3. **Opportunity & Solution System**: Opportunities move unrevealed -> revealed -> achieved. Solution quality is 0-100 and starts low.

**Trust Score Logic (CRITICAL, 0-5 scale)**:
- Trust caps per round: Round 1 max 2, Round 2 max 4, Round 3 max 5.
- Reactions: good match +1, neutral 0, bad match -1.

**Role-Playing Rules**: Be realistic. B2B sales is tough. When a player probes successfully, reveal hints about what the NPC cares about.

**Output Requirement (CRITICAL)**: Respond with ONLY a valid JSON object, no markdown, no prose, matching this schema:
{
  "narrative": string (required),
  "npc_updates": [{"npc_id": string, "trust_change": number, "mood_update": "Happy"|"Neutral"|"Angry"|"Thinking"|"Surprised", "dialogue": string}] (required, may be empty),
  "game_status_update": "active"|"won"|"lost"|"no_decision" (optional),
  "stage_transition": {"should_advance": bool, "next_stage_name": "Discovery"|"Validation"|"Closing"} (optional),
  "opportunity_updates": [{"id": string, "status": "unrevealed"|"revealed"|"achieved", "title": string, "description": string, "requirements": [{"npc_id": string, "min_trust": number}]}] (optional),
  "solution_update": {"quality_change": number, "new_feature": string} (optional),
  "visual_cues": ["screen_shake"|"confetti"|"darken_bg"|"spotlight"] (optional)
}`

// ScenarioSystemPrompt drives the scenario-generation oracle.
const ScenarioSystemPrompt = `You are an expert B2B Sales Scenario Designer. Create a realistic, challenging sales simulation scenario from the player's inputs.

**Output Requirements**: Respond with ONLY a valid JSON object, no markdown, matching:
{
  "project": {"title": string, "summary": string, "org_description_stages": [string, string, string]},
  "npcs": [exactly 9 of {"name": string, "role_type": "Economic_Buyer"|"Technical_Buyer"|"Coach"|"Anti_Champion"|"Staff"|"Gatekeeper", "title": string, "gender": "Male"|"Female", "personality": string, "trust_score": number 0-5, "hidden_agenda": string, "dialogues": [exactly 6 strings], "avatar_prompt": string, "is_key_decision_maker": bool}]
}

Rules:
- Exactly 3 NPCs with is_key_decision_maker true (Economic Buyer, Technical Buyer, Coach or similar high-level roles) with specific, high-stakes hidden agendas.
- 6 staff/gatekeepers with agendas about office politics, workload, or petty grievances.
- org_description_stages: stage 1 public info, stage 2 internal challenges, stage 3 deep crisis/politics.
- dialogues per NPC: lines 0-1 guarded (round 1), 2-3 specific pain points (round 2), 4-5 secrets and hidden agenda hints (round 3).
- Initial trust should be low (0-2). Key Decision Makers should be harder to please.
- Make the org chart realistic but slightly obscure; the 3 KDMs should not be obvious from titles alone.`

// AnalystSystemPrompt drives the post-game analysis oracle.
const AnalystSystemPrompt = `You are a veteran B2B sales coach reviewing a completed simulation session. Analyze the player's decisions from the session log.

Respond with ONLY a valid JSON object, no markdown, matching:
{
  "scores": {"logic": number 0-100, "empathy": number 0-100, "closing": number 0-100},
  "feedback_markdown": string (detailed advice in markdown),
  "key_nodes": [{"turn": number, "action_name": string, "npc_name": string, "result": "Positive"|"Negative"|"Neutral", "description": string}],
  "trust_trends": [{"turn": number, "npc_name": string, "trust_score": number}],
  "key_mistake_index": number (optional)
}`

// BuildScenarioPrompt renders the user message for scenario
// generation.
func BuildScenarioPrompt(params scenario.Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player Company Industry: %s\n", params.Industry)
	fmt.Fprintf(&b, "Player Product: %s\n", params.Product)
	fmt.Fprintf(&b, "Target Customer: %s\n\n", params.Target)
	b.WriteString("Generate a challenging sales scenario.\n")
	b.WriteString(languageInstruction(params.Language) + "\n")
	b.WriteString("Note: trust_score is on a 0-5 scale. Initial trust should be low (0-2).\n")
	return b.String()
}

// BuildTurnMessages renders the message sequence for turn resolution:
// full game context, the player action, engine directives, the
// difficulty instruction, and the preset-dialogue window for the
// targeted NPC.
func BuildTurnMessages(s *session.Session, action engine.Action, card *deck.Card, directives []string) []Message {
	stateJSON, _ := json.Marshal(s)
	actionJSON, _ := json.Marshal(action)

	var b strings.Builder
	fmt.Fprintf(&b, "Current Game Context: %s\n\n", stateJSON)
	fmt.Fprintf(&b, "Player Action: %s\n", actionJSON)
	if card != nil {
		fmt.Fprintf(&b, "Card Played: %s (%s) - %s\n", card.Name, card.Type, card.Description)
	}

	if len(directives) > 0 {
		b.WriteString("\n--- SYSTEM RULES (HIGHEST PRIORITY) ---\n")
		b.WriteString(strings.Join(directives, "\n"))
		b.WriteString("\n---------------------------------------\n")
	}

	b.WriteString("\n" + difficultyInstruction(s.Mode) + "\n")

	if ctx := presetDialogueContext(s, action.TargetNPCID); ctx != "" {
		b.WriteString("\n" + ctx + "\n")
	}

	b.WriteString("\n" + languageInstruction(s.Language) + "\n")
	b.WriteString("\nResolve the turn. Return a valid JSON object matching the schema.")

	return []Message{
		{Role: chat.RoleSystem, Content: GameMasterSystemPrompt},
		{Role: chat.RoleUser, Content: b.String()},
	}
}

// BuildAnalysisMessages renders the message sequence for post-game
// analysis.
func BuildAnalysisMessages(history []chat.Entry) []Message {
	historyJSON, _ := json.Marshal(history)
	return []Message{
		{Role: chat.RoleSystem, Content: AnalystSystemPrompt},
		{Role: chat.RoleUser, Content: fmt.Sprintf("Analyze this sales game session log:\n%s\n\nReturn a valid JSON report matching the schema.", historyJSON)},
	}
}

func difficultyInstruction(mode session.Mode) string {
	if mode == session.ModeDetailed {
		return "DIFFICULTY: HARD/REALISTIC. The player is in 'Deep Dive' mode. Be extremely skeptical. NPCs should only increase trust if the argument is very specific and highly relevant to their hidden agenda. Generic pitches earn 0 or negative trust."
	}
	return "DIFFICULTY: STANDARD. Evaluate actions normally."
}

func languageInstruction(lang string) string {
	if lang == "cn" {
		return "IMPORTANT: All narrative and dialogue output MUST be in Simplified Chinese (简体中文)."
	}
	return "IMPORTANT: All narrative and dialogue output MUST be in English."
}

// presetDialogueContext exposes the targeted NPC's preset lines for
// the current round. Round r unlocks the first min(6, 2r) lines.
func presetDialogueContext(s *session.Session, targetID string) string {
	if targetID == "" {
		return ""
	}
	npc, ok := s.NPCs.Get(targetID)
	if !ok || len(npc.Dialogues) == 0 {
		return ""
	}

	max := s.Round * 2
	if max > len(npc.Dialogues) {
		max = len(npc.Dialogues)
	}
	if max <= 0 {
		return ""
	}
	available, _ := json.Marshal(npc.Dialogues[:max])

	return fmt.Sprintf("AVAILABLE PRESET DIALOGUES for %s:\n%s\n\nINSTRUCTION: You SHOULD try to incorporate one of these lines (or a variation) into the NPC's response if it fits the context. Prioritize lines that haven't been used yet.", npc.Name, available)
}
