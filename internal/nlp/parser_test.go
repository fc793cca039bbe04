package nlp

import (
	"errors"
	"testing"

	"hactl/internal/domain"
)

func TestParseActionSynonyms(t *testing.T) {
	cases := []struct {
		input  string
		action domain.Action
	}{
		{"turn on kitchen light", domain.ActionOn},
		{"on kitchen light", domain.ActionOn},
		{"switch on kitchen light", domain.ActionOn},
		{"activate kitchen light", domain.ActionOn},
		{"turn off kitchen light", domain.ActionOff},
		{"kitchen light off", domain.ActionOff},
		{"stop kitchen fan", domain.ActionOff},
		{"toggle bedroom fan", domain.ActionToggle},
		{"flip bedroom fan", domain.ActionToggle},
		{"open garage door", domain.ActionOpen},
		{"unlock front door", domain.ActionOpen},
		{"close garage door", domain.ActionClose},
		{"shut garage door", domain.ActionClose},
		{"lock front door", domain.ActionClose},
		{"dim office light", domain.ActionDim},
		{"lower office light", domain.ActionDim},
		{"brighten office light", domain.ActionBrighten},
		{"raise office light", domain.ActionBrighten},
		{"set office light 50%", domain.ActionSet},
		{"volume up living room speaker", domain.ActionVolumeUp},
		{"louder living room speaker", domain.ActionVolumeUp},
		{"volume down living room speaker", domain.ActionVolumeDown},
		{"quieter living room speaker", domain.ActionVolumeDown},
		{"mute living room speaker", domain.ActionMute},
		{"unmute living room speaker", domain.ActionUnmute},
	}

	p := NewParser()
	for _, tc := range cases {
		intent, err := p.Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tc.input, err)
		}
		if intent.Action != tc.action {
			t.Errorf("Parse(%q) action = %q, want %q", tc.input, intent.Action, tc.action)
		}
	}
}

func TestParseTargetPhrase(t *testing.T) {
	p := NewParser()

	intent, err := p.Parse("please turn on the kitchen light")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if intent.Target != "kitchen light" {
		t.Errorf("target = %q, want %q", intent.Target, "kitchen light")
	}
	if intent.Elliptical {
		t.Error("intent should not be elliptical")
	}
}

func TestParseTrailingAction(t *testing.T) {
	p := NewParser()

	intent, err := p.Parse("kitchen light toggle")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if intent.Action != domain.ActionToggle {
		t.Errorf("action = %q, want toggle", intent.Action)
	}
	if intent.Target != "kitchen light" {
		t.Errorf("target = %q, want %q", intent.Target, "kitchen light")
	}
}

func TestParsePercentParameter(t *testing.T) {
	p := NewParser()

	intent, err := p.Parse("dim office light to 50%")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if intent.Action != domain.ActionDim {
		t.Errorf("action = %q, want dim", intent.Action)
	}
	if intent.Target != "office light" {
		t.Errorf("target = %q, want %q", intent.Target, "office light")
	}
	if intent.Param.Kind != domain.ParamPercent || intent.Param.Percent != 50 {
		t.Errorf("param = %+v, want percent 50", intent.Param)
	}
}

func TestParseBareNumberParameter(t *testing.T) {
	p := NewParser()

	intent, err := p.Parse("set bedroom light 75")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if intent.Param.Kind != domain.ParamPercent || intent.Param.Percent != 75 {
		t.Errorf("param = %+v, want percent 75", intent.Param)
	}
}

func TestParseColorParameter(t *testing.T) {
	p := NewParser()

	for _, input := range []string{"set kitchen light red", "set red kitchen light"} {
		intent, err := p.Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", input, err)
		}
		if intent.Param.Kind != domain.ParamColor || intent.Param.Color != "red" {
			t.Errorf("Parse(%q) param = %+v, want color red", input, intent.Param)
		}
		if intent.Target != "kitchen light" {
			t.Errorf("Parse(%q) target = %q, want %q", input, intent.Target, "kitchen light")
		}
	}
}

func TestParseElliptical(t *testing.T) {
	cases := []struct {
		input  string
		action domain.Action
	}{
		{"brighter", domain.ActionBrighten},
		{"dimmer", domain.ActionDim},
		{"louder", domain.ActionVolumeUp},
		{"off", domain.ActionOff},
		{"turn them off", domain.ActionOff},
		{"turn it on", domain.ActionOn},
		{"toggle them", domain.ActionToggle},
	}

	p := NewParser()
	for _, tc := range cases {
		intent, err := p.Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tc.input, err)
		}
		if !intent.Elliptical {
			t.Errorf("Parse(%q) should be elliptical", tc.input)
		}
		if intent.Action != tc.action {
			t.Errorf("Parse(%q) action = %q, want %q", tc.input, intent.Action, tc.action)
		}
		if intent.Target != "" {
			t.Errorf("Parse(%q) target = %q, want empty", tc.input, intent.Target)
		}
	}
}

func TestParseMultiTargetSeparators(t *testing.T) {
	p := NewParser()

	intent, err := p.Parse("turn off kitchen light, bedroom light and hallway light")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := "kitchen light and bedroom light and hallway light"
	if intent.Target != want {
		t.Errorf("target = %q, want %q", intent.Target, want)
	}
}

func TestParseRejectsDegenerateInput(t *testing.T) {
	p := NewParser()

	for _, input := range []string{"", "   ", "the a an", "please"} {
		_, err := p.Parse(input)
		var synErr *domain.SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("Parse(%q) error = %v, want SyntaxError", input, err)
		}
	}
}

func TestParseNoActionKeyword(t *testing.T) {
	p := NewParser()

	_, err := p.Parse("kitchen light")
	var synErr *domain.SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %v, want SyntaxError", err)
	}
	if synErr.Span != "kitchen light" {
		t.Errorf("span = %q, want %q", synErr.Span, "kitchen light")
	}
}

func TestTokenizeStripsPunctuation(t *testing.T) {
	got := tokenize("Turn on the Kitchen Light!")
	want := []string{"turn", "on", "kitchen", "light"}
	if len(got) != len(want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenize() = %v, want %v", got, want)
		}
	}
}
