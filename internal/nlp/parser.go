// Package nlp turns free-form utterances into structured intents.
//
// Parsing is purely lexical: the target phrase is extracted but not resolved
// against the registry. "turn on kitchen light" and "kitchen light on" both
// yield {action: on, target: "kitchen light"}.
package nlp

import (
	"strconv"
	"strings"

	"hactl/internal/domain"
)

// fillerWords are stripped before any other processing.
var fillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "in": true,
	"at": true, "for": true, "my": true, "please": true,
}

// pronouns refer back to the previous command's targets; they are dropped so
// "turn them off" parses as elliptical.
var pronouns = map[string]bool{
	"it": true, "them": true, "they": true,
	"this": true, "that": true, "these": true, "those": true,
}

// colorNames are accepted as a parameter for set/dim/brighten actions.
var colorNames = map[string]bool{
	"red": true, "orange": true, "yellow": true, "green": true,
	"blue": true, "purple": true, "pink": true, "white": true,
}

// Parser folds action synonyms into the closed action set. The synonym table
// is built once at construction.
type Parser struct {
	synonyms map[string]domain.Action
}

// NewParser builds a parser with the standard synonym table.
func NewParser() *Parser {
	syn := map[string]domain.Action{
		"on": domain.ActionOn, "enable": domain.ActionOn,
		"activate": domain.ActionOn, "start": domain.ActionOn,

		"off": domain.ActionOff, "disable": domain.ActionOff,
		"deactivate": domain.ActionOff, "stop": domain.ActionOff,
		"kill": domain.ActionOff,

		"toggle": domain.ActionToggle, "flip": domain.ActionToggle,

		"open": domain.ActionOpen, "unlock": domain.ActionOpen,

		"close": domain.ActionClose, "shut": domain.ActionClose,
		"lock": domain.ActionClose,

		"dim": domain.ActionDim, "dimmer": domain.ActionDim,
		"darker": domain.ActionDim, "lower": domain.ActionDim,

		"brighten": domain.ActionBrighten, "brighter": domain.ActionBrighten,
		"raise": domain.ActionBrighten,

		"set": domain.ActionSet,

		"louder": domain.ActionVolumeUp,

		"quieter": domain.ActionVolumeDown, "softer": domain.ActionVolumeDown,

		"mute": domain.ActionMute, "silence": domain.ActionMute,

		"unmute": domain.ActionUnmute,
	}
	return &Parser{synonyms: syn}
}

// Parse produces an intent or a SyntaxError carrying the unrecognized span.
// The target phrase may be empty only for elliptical commands ("brighter");
// whether a usable context exists is the resolver's concern.
func (p *Parser) Parse(input string) (domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	tokens := tokenize(trimmed)
	if len(tokens) == 0 {
		return domain.Intent{}, &domain.SyntaxError{Input: input, Span: trimmed}
	}

	action, rest, found := p.extractAction(tokens)
	if !found {
		return domain.Intent{}, &domain.SyntaxError{
			Input: input,
			Span:  strings.Join(rest, " "),
		}
	}

	param, rest := extractParam(action, rest)

	intent := domain.Intent{
		Raw:    input,
		Action: action,
		Target: strings.Join(rest, " "),
		Param:  param,
	}
	intent.Elliptical = intent.Target == ""
	return intent, nil
}

// extractAction scans for the first action keyword, anywhere in the phrase.
// "turn"/"switch" preceding an action word is consumed with it, as are the
// compound verbs "volume up" and "volume down".
func (p *Parser) extractAction(tokens []string) (domain.Action, []string, bool) {
	var (
		action domain.Action
		found  bool
		rest   []string
	)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// "turn" is purely auxiliary ("turn the tv off"); "switch" doubles
		// as a device noun, so it is only consumed directly before a verb.
		if tok == "turn" || pronouns[tok] {
			continue
		}
		if !found && tok == "switch" && i+1 < len(tokens) {
			if _, ok := p.synonyms[tokens[i+1]]; ok {
				continue // the action itself is picked up next iteration
			}
		}

		if !found && tok == "volume" && i+1 < len(tokens) {
			switch tokens[i+1] {
			case "up":
				action, found = domain.ActionVolumeUp, true
				i++
				continue
			case "down":
				action, found = domain.ActionVolumeDown, true
				i++
				continue
			}
		}

		if !found {
			if a, ok := p.synonyms[tok]; ok {
				action, found = a, true
				continue
			}
		}
		rest = append(rest, tok)
	}
	return action, rest, found
}

// extractParam pulls a trailing percentage or a color-name token off the
// remainder for actions that accept a parameter.
func extractParam(action domain.Action, tokens []string) (domain.Param, []string) {
	if action.TakesParam() {
		if len(tokens) > 0 {
			if pct, ok := parsePercent(tokens[len(tokens)-1]); ok {
				return domain.PercentParam(pct), tokens[:len(tokens)-1]
			}
		}
		if action != domain.ActionVolumeUp && action != domain.ActionVolumeDown {
			if color, rest, ok := extractColor(tokens); ok {
				return domain.ColorParam(color), rest
			}
		}
	}
	return domain.NoParam(), tokens
}

// extractColor accepts a color name in leading or trailing position only.
func extractColor(tokens []string) (string, []string, bool) {
	if len(tokens) == 0 {
		return "", tokens, false
	}
	if colorNames[tokens[0]] {
		return tokens[0], tokens[1:], true
	}
	last := len(tokens) - 1
	if colorNames[tokens[last]] {
		return tokens[last], tokens[:last], true
	}
	return "", tokens, false
}

// tokenize lowercases, splits on whitespace, strips punctuation, and drops
// filler words. Commas become the multi-target separator "and" so the
// resolver sees a uniform phrase.
func tokenize(input string) []string {
	fields := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
	var tokens []string
	for _, f := range fields {
		sep := strings.HasSuffix(f, ",")
		f = strings.TrimFunc(f, func(r rune) bool {
			return !isWordRune(r)
		})
		if f != "" && !fillerWords[f] {
			tokens = append(tokens, f)
		}
		if sep {
			if n := len(tokens); n > 0 && tokens[n-1] != "and" {
				tokens = append(tokens, "and")
			}
		}
	}
	// a trailing separator carries no meaning
	for len(tokens) > 0 && tokens[len(tokens)-1] == "and" {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '%' || r == '_' || r == '.' || r == '-':
		return true
	}
	return false
}

// parsePercent accepts "50%" or a bare 0..100 integer.
func parsePercent(s string) (int, bool) {
	s = strings.TrimSuffix(s, "%")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}
