package session

// SolutionEvent records one improvement to the solution.
type SolutionEvent struct {
	Round  int    `json:"round"`
	Action string `json:"action"`
}

// Solution is the pitch the player is assembling. QualityScore is
// clamped to [0,100]; Features and History are append-only.
type Solution struct {
	Features     []string        `json:"features"`
	QualityScore float64         `json:"quality_score"`
	History      []SolutionEvent `json:"history"`
}

func NewSolution() Solution {
	return Solution{
		Features:     make([]string, 0),
		QualityScore: InitialSolutionQuality,
		History:      make([]SolutionEvent, 0),
	}
}

func (s Solution) Clone() Solution {
	out := s
	out.Features = make([]string, len(s.Features))
	copy(out.Features, s.Features)
	out.History = make([]SolutionEvent, len(s.History))
	copy(out.History, s.History)
	return out
}

// ClampQuality bounds a quality score to the valid range.
func ClampQuality(q float64) float64 {
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}
