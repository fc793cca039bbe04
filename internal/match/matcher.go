// Package match ranks registry candidates against free-text phrases.
//
// Scoring is an ordered, explicit pipeline: exact match, then alias/plural
// normalization, then token containment, then edit-distance similarity. Ties
// at the top score are always surfaced as ambiguous, never silently broken,
// which keeps ambiguity behavior reproducible.
package match

import (
	"fmt"
	"sort"
	"strings"

	"hactl/internal/domain"
)

const (
	// aliasScore is assigned to alias and plural-normalized matches.
	aliasScore = 0.95
	// containBase and containSpan map the phrase/name word-count ratio into
	// a containment score in (containBase, containBase+containSpan].
	containBase = 0.65
	containSpan = 0.25
	// scoreEpsilon bounds float comparison when detecting ties.
	scoreEpsilon = 1e-9
)

// Matcher scores candidates against phrases. Threshold is the minimum
// acceptance score; MaxSuggestions caps the near-misses carried by a none
// result. Both are policy knobs owned by configuration.
type Matcher struct {
	Threshold      float64
	MaxSuggestions int
}

// New builds a matcher with the given acceptance threshold.
func New(threshold float64, maxSuggestions int) *Matcher {
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}
	return &Matcher{Threshold: threshold, MaxSuggestions: maxSuggestions}
}

// Match resolves phrase against candidates. With exactOnly set, only
// identifier-exact or name-exact (post-normalization) matches are accepted.
func (m *Matcher) Match(phrase string, candidates []domain.Candidate, exactOnly bool) domain.MatchResult {
	if len(candidates) == 0 {
		return domain.MatchResult{
			Kind:   domain.MatchNone,
			Reason: "no candidates to match against",
		}
	}

	key := normalize(phrase)
	if key == "" {
		return domain.MatchResult{
			Kind:   domain.MatchNone,
			Reason: fmt.Sprintf("%q is empty after normalization", phrase),
		}
	}

	// Exact identifiers and names short-circuit everything else.
	for _, c := range candidates {
		if phrase == c.ID || key == normalize(c.ID) || key == normalize(c.Name) {
			return domain.MatchResult{Kind: domain.MatchExact, Best: c, Score: 1.0}
		}
	}

	if exactOnly {
		return domain.MatchResult{
			Kind:   domain.MatchNone,
			Reason: fmt.Sprintf("no exact match for %q", phrase),
		}
	}

	if res, ok := m.matchAlias(key, candidates); ok {
		return res
	}
	return m.matchScored(key, phrase, candidates)
}

// matchAlias matches plural/singular variants of the primary names and any
// declared alias names.
func (m *Matcher) matchAlias(key string, candidates []domain.Candidate) (domain.MatchResult, bool) {
	sing := singularizeWords(key)
	var hits []domain.Scored
	for _, c := range candidates {
		if sing == singularizeWords(normalize(c.ID)) || sing == singularizeWords(normalize(c.Name)) {
			hits = append(hits, domain.Scored{Candidate: c, Score: aliasScore})
			continue
		}
		for _, alias := range c.Extra {
			ak := normalize(alias)
			if key == ak || sing == singularizeWords(ak) {
				hits = append(hits, domain.Scored{Candidate: c, Score: aliasScore})
				break
			}
		}
	}
	switch len(hits) {
	case 0:
		return domain.MatchResult{}, false
	case 1:
		return domain.MatchResult{
			Kind:  domain.MatchAlias,
			Best:  hits[0].Candidate,
			Score: aliasScore,
		}, true
	default:
		sortScored(hits)
		return domain.MatchResult{
			Kind:  domain.MatchAmbiguous,
			Score: aliasScore,
			Tied:  hits,
		}, true
	}
}

// matchScored runs the containment and edit-distance heuristics over every
// candidate and applies the acceptance threshold and tie rule.
func (m *Matcher) matchScored(key, phrase string, candidates []domain.Candidate) domain.MatchResult {
	scored := make([]domain.Scored, 0, len(candidates))
	for _, c := range candidates {
		if s := scoreCandidate(key, c); s > 0 {
			scored = append(scored, domain.Scored{Candidate: c, Score: s})
		}
	}
	sortScored(scored)

	if len(scored) == 0 || scored[0].Score < m.Threshold {
		n := m.MaxSuggestions
		if n > len(scored) {
			n = len(scored)
		}
		return domain.MatchResult{
			Kind:        domain.MatchNone,
			Reason:      fmt.Sprintf("no candidate scored above %.2f for %q", m.Threshold, phrase),
			Suggestions: scored[:n],
		}
	}

	top := scored[0].Score
	tied := []domain.Scored{scored[0]}
	for _, s := range scored[1:] {
		if top-s.Score > scoreEpsilon {
			break
		}
		tied = append(tied, s)
	}
	if len(tied) > 1 {
		return domain.MatchResult{Kind: domain.MatchAmbiguous, Score: top, Tied: tied}
	}
	return domain.MatchResult{Kind: domain.MatchFuzzy, Best: scored[0].Candidate, Score: top}
}

// scoreCandidate returns the best heuristic score across the candidate's
// searchable names.
func scoreCandidate(key string, c domain.Candidate) float64 {
	names := make([]string, 0, 2+len(c.Extra))
	names = append(names, c.ID, c.Name)
	names = append(names, c.Extra...)

	var best float64
	for _, name := range names {
		nk := normalize(name)
		if nk == "" {
			continue
		}
		if s := containmentScore(key, nk); s > best {
			best = s
		}
		if s := editSimilarity(singularizeWords(key), singularizeWords(nk)); s > best {
			best = s
		}
	}
	return best
}

// containmentScore scores key against name when every word of key appears as
// a word of name. The score grows with the share of the name the phrase
// covers, so a more specific phrase outranks a vaguer one.
func containmentScore(key, name string) float64 {
	keyWords := strings.Fields(singularizeWords(key))
	nameWords := strings.Fields(singularizeWords(name))
	if len(keyWords) == 0 || len(keyWords) > len(nameWords) {
		return 0
	}
	nameSet := make(map[string]bool, len(nameWords))
	for _, w := range nameWords {
		nameSet[w] = true
	}
	for _, w := range keyWords {
		if !nameSet[w] {
			return 0
		}
	}
	ratio := float64(len(keyWords)) / float64(len(nameWords))
	return containBase + containSpan*ratio
}

// editSimilarity converts Levenshtein distance to a similarity in [0,1].
// Length difference counts toward the distance, penalizing matches against
// much longer or shorter names.
func editSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein(a, b)
	return 1.0 - float64(d)/float64(longest)
}

// levenshtein computes edit distance with the classic two-row method.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min3(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// sortScored orders by score descending, candidate ID ascending for
// deterministic ties.
func sortScored(scored []domain.Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Candidate.ID < scored[j].Candidate.ID
	})
}

// normalize lowercases, maps identifier punctuation to spaces, strips the
// rest, and collapses whitespace. Word order is preserved.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-' || r == ' ':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// singularizeWords applies basic English plural folding to each word.
func singularizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = singularize(w)
	}
	return strings.Join(words, " ")
}

func singularize(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 3:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") ||
		strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "xes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 1:
		return w[:len(w)-1]
	}
	return w
}
