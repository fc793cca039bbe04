package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"hactl/internal/domain"
)

func kitchenCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: "light.kitchen_main", Name: "Kitchen Light", Domain: "light"},
		{ID: "light.kitchen_lamp", Name: "Kitchen Lamp", Domain: "light"},
		{ID: "light.bedroom", Name: "Bedroom Light", Domain: "light"},
		{ID: "media_player.living_room", Name: "Living Room Speaker", Domain: "media_player"},
	}
}

func TestMatchExactIdentifier(t *testing.T) {
	m := New(0.6, 3)
	res := m.Match("light.kitchen_main", kitchenCandidates(), false)
	if res.Kind != domain.MatchExact {
		t.Fatalf("kind = %v, want exact", res.Kind)
	}
	if res.Best.ID != "light.kitchen_main" {
		t.Errorf("best = %q, want light.kitchen_main", res.Best.ID)
	}
	if res.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", res.Score)
	}
}

func TestMatchExactName(t *testing.T) {
	m := New(0.6, 3)
	for _, phrase := range []string{"Kitchen Light", "kitchen light", "KITCHEN LIGHT"} {
		res := m.Match(phrase, kitchenCandidates(), false)
		if res.Kind != domain.MatchExact {
			t.Errorf("Match(%q) kind = %v, want exact", phrase, res.Kind)
			continue
		}
		if res.Best.ID != "light.kitchen_main" {
			t.Errorf("Match(%q) best = %q, want light.kitchen_main", phrase, res.Best.ID)
		}
	}
}

func TestMatchPluralVariantIsAlias(t *testing.T) {
	m := New(0.6, 3)
	res := m.Match("kitchen lights", kitchenCandidates(), false)
	if res.Kind != domain.MatchAlias {
		t.Fatalf("kind = %v, want alias", res.Kind)
	}
	if res.Best.ID != "light.kitchen_main" {
		t.Errorf("best = %q, want light.kitchen_main", res.Best.ID)
	}
	if res.Score != aliasScore {
		t.Errorf("score = %v, want %v", res.Score, aliasScore)
	}
}

func TestMatchDeclaredAlias(t *testing.T) {
	cands := []domain.Candidate{
		{ID: "area.living_room", Name: "Living Room", Extra: []string{"lounge", "front room"}},
		{ID: "area.office", Name: "Office"},
	}
	m := New(0.6, 3)
	res := m.Match("lounge", cands, false)
	if res.Kind != domain.MatchAlias {
		t.Fatalf("kind = %v, want alias", res.Kind)
	}
	if res.Best.ID != "area.living_room" {
		t.Errorf("best = %q, want area.living_room", res.Best.ID)
	}
}

func TestMatchTypoWithinEditDistance(t *testing.T) {
	m := New(0.6, 3)
	res := m.Match("kitchen ligth", kitchenCandidates(), false)
	if res.Kind != domain.MatchFuzzy {
		t.Fatalf("kind = %v, want fuzzy", res.Kind)
	}
	if res.Best.ID != "light.kitchen_main" {
		t.Errorf("best = %q, want light.kitchen_main", res.Best.ID)
	}
	if res.Score < 0.6 || res.Score >= 1.0 {
		t.Errorf("score = %v, want in [0.6, 1.0)", res.Score)
	}
}

func TestMatchAmbiguousTie(t *testing.T) {
	m := New(0.6, 3)
	res := m.Match("kitchen", kitchenCandidates(), false)
	if res.Kind != domain.MatchAmbiguous {
		t.Fatalf("kind = %v, want ambiguous", res.Kind)
	}
	var ids []string
	for _, s := range res.Tied {
		ids = append(ids, s.Candidate.ID)
	}
	want := []string{"light.kitchen_lamp", "light.kitchen_main"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("tied candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchContainmentPrefersSpecificPhrase(t *testing.T) {
	cands := []domain.Candidate{
		{ID: "light.hall_upstairs", Name: "Upstairs Hallway Light"},
		{ID: "light.hall_downstairs", Name: "Downstairs Hallway Light"},
	}
	m := New(0.6, 3)
	res := m.Match("upstairs hallway", cands, false)
	if res.Kind != domain.MatchFuzzy {
		t.Fatalf("kind = %v, want fuzzy", res.Kind)
	}
	if res.Best.ID != "light.hall_upstairs" {
		t.Errorf("best = %q, want light.hall_upstairs", res.Best.ID)
	}
}

func TestMatchNoneBelowThreshold(t *testing.T) {
	m := New(0.6, 2)
	res := m.Match("garage door opener", kitchenCandidates(), false)
	if res.Kind != domain.MatchNone {
		t.Fatalf("kind = %v, want none", res.Kind)
	}
	if res.Reason == "" {
		t.Error("reason is empty")
	}
	if len(res.Suggestions) > 2 {
		t.Errorf("got %d suggestions, want at most 2", len(res.Suggestions))
	}
}

func TestMatchExactOnlyRejectsFuzzy(t *testing.T) {
	m := New(0.6, 3)
	res := m.Match("kitchen ligth", kitchenCandidates(), true)
	if res.Kind != domain.MatchNone {
		t.Fatalf("kind = %v, want none in exact-only mode", res.Kind)
	}
	res = m.Match("kitchen light", kitchenCandidates(), true)
	if res.Kind != domain.MatchExact {
		t.Fatalf("kind = %v, want exact for verbatim name in exact-only mode", res.Kind)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	m := New(0.6, 3)
	if res := m.Match("kitchen", nil, false); res.Kind != domain.MatchNone {
		t.Errorf("empty candidates: kind = %v, want none", res.Kind)
	}
	if res := m.Match("  !!  ", kitchenCandidates(), false); res.Kind != domain.MatchNone {
		t.Errorf("degenerate phrase: kind = %v, want none", res.Kind)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"light.kitchen_main", "light kitchen main"},
		{"Kitchen  Light!", "kitchen light"},
		{"front-porch", "front porch"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"lights", "light"},
		{"switches", "switch"},
		{"nurseries", "nursery"},
		{"glass", "glass"},
		{"fan", "fan"},
	}
	for _, tt := range tests {
		if got := singularize(tt.in); got != tt.want {
			t.Errorf("singularize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitchen", "kitchen", 0},
		{"light", "ligth", 2},
		{"light", "lights", 1},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
