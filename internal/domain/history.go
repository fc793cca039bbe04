package domain

import "time"

// HistoryEntry captures one resolution attempt, successful or not. Entries
// are append-only; normal command flow never mutates or prunes them.
type HistoryEntry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Utterance      string    `json:"utterance"`
	Interpretation string    `json:"interpretation,omitempty"`
	Action         Action    `json:"action,omitempty"`
	Targets        []string  `json:"targets,omitempty"`
	MatchKind      MatchKind `json:"match_kind,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
}

// HistoryFilter narrows history queries.
type HistoryFilter struct {
	Limit  int
	Search string
}

// AccuracyStats aggregates match quality over the recorded history.
type AccuracyStats struct {
	Total          int            `json:"total"`
	ExactMatches   int            `json:"exact_matches"`
	AliasMatches   int            `json:"alias_matches"`
	FuzzyMatches   int            `json:"fuzzy_matches"`
	Ambiguous      int            `json:"ambiguous"`
	Failures       int            `json:"failures"`
	EntityUseCount map[string]int `json:"entity_use_count,omitempty"`
}

// SuccessRate returns the percentage of attempts that resolved and
// dispatched successfully. An empty history counts as 100%.
func (s AccuracyStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 100.0
	}
	return float64(s.Total-s.Failures) / float64(s.Total) * 100.0
}

// TopEntities returns the n most frequently targeted entity IDs, most used
// first.
func (s AccuracyStats) TopEntities(n int) []string {
	type pair struct {
		id    string
		count int
	}
	pairs := make([]pair, 0, len(s.EntityUseCount))
	for id, count := range s.EntityUseCount {
		pairs = append(pairs, pair{id, count})
	}
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			if pairs[j].count > pairs[i].count ||
				(pairs[j].count == pairs[i].count && pairs[j].id < pairs[i].id) {
				pairs[i], pairs[j] = pairs[j], pairs[i]
			}
		}
	}
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]string, 0, n)
	for _, p := range pairs[:n] {
		out = append(out, p.id)
	}
	return out
}
