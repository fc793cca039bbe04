package domain

// Action is the canonical command verb extracted from an utterance. The set
// is closed; synonyms are folded into it by the parser.
type Action string

const (
	ActionOn         Action = "on"
	ActionOff        Action = "off"
	ActionToggle     Action = "toggle"
	ActionOpen       Action = "open"
	ActionClose      Action = "close"
	ActionDim        Action = "dim"
	ActionBrighten   Action = "brighten"
	ActionSet        Action = "set"
	ActionVolumeUp   Action = "volume-up"
	ActionVolumeDown Action = "volume-down"
	ActionMute       Action = "mute"
	ActionUnmute     Action = "unmute"
)

// ParamKind discriminates the optional intent parameter.
type ParamKind string

const (
	ParamNone    ParamKind = "none"
	ParamPercent ParamKind = "percent"
	ParamColor   ParamKind = "color"
)

// Param is the optional parameter attached to an intent: a percentage for
// dim/brighten/set/volume actions, or a color name for set.
type Param struct {
	Kind    ParamKind `json:"kind"`
	Percent int       `json:"percent,omitempty"`
	Color   string    `json:"color,omitempty"`
}

// NoParam is the zero parameter.
func NoParam() Param { return Param{Kind: ParamNone} }

// PercentParam builds a percentage parameter.
func PercentParam(pct int) Param { return Param{Kind: ParamPercent, Percent: pct} }

// ColorParam builds a color parameter.
func ColorParam(name string) Param { return Param{Kind: ParamColor, Color: name} }

// Intent is the parser's output: an action, a raw target phrase (possibly
// empty for elliptical commands), and an optional parameter. The target
// phrase is unresolved text; resolution happens in the resolver.
type Intent struct {
	Raw        string `json:"raw"`
	Action     Action `json:"action"`
	Target     string `json:"target"`
	Param      Param  `json:"param"`
	Elliptical bool   `json:"elliptical"`
}

// DomainFilter returns the entity domains an action implies, or nil when the
// action applies to any domain. Restricting candidates before matching keeps
// "volume up" from landing on a light.
func (a Action) DomainFilter() []string {
	switch a {
	case ActionDim, ActionBrighten:
		return []string{"light"}
	case ActionVolumeUp, ActionVolumeDown, ActionMute, ActionUnmute:
		return []string{"media_player"}
	case ActionOpen, ActionClose:
		return []string{"cover", "lock", "valve"}
	default:
		return nil
	}
}

// TakesParam reports whether the action accepts a numeric or color parameter.
func (a Action) TakesParam() bool {
	switch a {
	case ActionDim, ActionBrighten, ActionSet, ActionVolumeUp, ActionVolumeDown:
		return true
	default:
		return false
	}
}
