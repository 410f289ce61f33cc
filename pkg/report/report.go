// Package report defines the post-game analysis payload produced by
// the analyst oracle over a finished session's history.
package report

import "fmt"

// Scores rates the playthrough on three 0-100 axes.
type Scores struct {
	Logic   float64 `json:"logic"`
	Empathy float64 `json:"empathy"`
	Closing float64 `json:"closing"`
}

// KeyNode is a critical turning point in the game.
type KeyNode struct {
	Round       int    `json:"turn"`
	ActionName  string `json:"action_name"`
	NPCName     string `json:"npc_name,omitempty"`
	Result      string `json:"result"` // Positive, Negative, Neutral
	Description string `json:"description"`
}

// TrustTrend is one sampled trust score for charting.
type TrustTrend struct {
	Round   int     `json:"turn"`
	NPCName string  `json:"npc_name"`
	Trust   float64 `json:"trust_score"`
}

// Report is the analyst oracle's full assessment.
type Report struct {
	Scores          Scores       `json:"scores"`
	FeedbackMD      string       `json:"feedback_markdown"`
	KeyNodes        []KeyNode    `json:"key_nodes"`
	TrustTrends     []TrustTrend `json:"trust_trends"`
	KeyMistakeIndex *int         `json:"key_mistake_index,omitempty"`
}

// Validate checks the structural contract of the analyst payload.
func (r *Report) Validate() error {
	if r == nil {
		return fmt.Errorf("missing report")
	}
	if r.FeedbackMD == "" {
		return fmt.Errorf("report: feedback_markdown is required")
	}
	for i, n := range r.KeyNodes {
		switch n.Result {
		case "Positive", "Negative", "Neutral":
		default:
			return fmt.Errorf("report: key node %d has unknown result %q", i, n.Result)
		}
	}
	return nil
}
