package domain

// MatchKind describes how a fuzzy match was found.
type MatchKind string

const (
	// MatchExact is identifier- or name-exact after normalization, score 1.0.
	MatchExact MatchKind = "exact"
	// MatchAlias matched an alias or a plural/singular variant of the name.
	MatchAlias MatchKind = "alias"
	// MatchFuzzy matched by containment or edit distance above threshold.
	MatchFuzzy MatchKind = "fuzzy"
	// MatchAmbiguous means two or more candidates tied at the top score.
	MatchAmbiguous MatchKind = "ambiguous"
	// MatchNone means no candidate scored above the acceptance threshold.
	MatchNone MatchKind = "none"
)

// Candidate is one registry entry offered to the matcher. Extra carries
// additional searchable names (aliases, underscore variants).
type Candidate struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Domain string   `json:"domain,omitempty"`
	Extra  []string `json:"extra,omitempty"`
}

// Scored pairs a candidate with its similarity score.
type Scored struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
}

// MatchResult is the fuzzy matcher's verdict for one phrase.
//
// Invariants: an ambiguous result carries the full set of tied top-scoring
// candidates, never an arbitrary pick; a none result carries zero matches, a
// human-readable reason, and best-effort near-miss suggestions.
type MatchResult struct {
	Kind        MatchKind `json:"kind"`
	Best        Candidate `json:"best,omitempty"`
	Score       float64   `json:"score"`
	Tied        []Scored  `json:"tied,omitempty"`
	Suggestions []Scored  `json:"suggestions,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// Matched reports whether the result resolved to a single candidate.
func (r MatchResult) Matched() bool {
	switch r.Kind {
	case MatchExact, MatchAlias, MatchFuzzy:
		return true
	default:
		return false
	}
}
