package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReorderNaturalArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "verb noun plural",
			in:   []string{"list", "entities"},
			want: []string{"entity", "list"},
		},
		{
			name: "show aliases to list",
			in:   []string{"show", "areas"},
			want: []string{"area", "list"},
		},
		{
			name: "get kept for entity",
			in:   []string{"get", "entity", "light.kitchen_main"},
			want: []string{"entity", "get", "light.kitchen_main"},
		},
		{
			name: "trailing args preserved",
			in:   []string{"list", "entities", "--domain", "light"},
			want: []string{"entity", "list", "--domain", "light"},
		},
		{
			name: "already noun verb",
			in:   []string{"entity", "list"},
			want: []string{"entity", "list"},
		},
		{
			name: "unknown noun untouched",
			in:   []string{"list", "snacks"},
			want: []string{"list", "snacks"},
		},
		{
			name: "utterance untouched",
			in:   []string{"turn", "on", "the", "kitchen", "light"},
			want: []string{"turn", "on", "the", "kitchen", "light"},
		},
		{
			name: "single arg untouched",
			in:   []string{"list"},
			want: []string{"list"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReorderNaturalArgs(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReorderNaturalArgs(%v) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
