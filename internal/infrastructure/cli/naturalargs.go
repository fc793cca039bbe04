package cli

// Natural argument reordering lets users type "hactl list entities" and have
// it routed as "hactl entity list". Only the first two arguments are ever
// considered; flags and everything after pass through untouched.

// nounForms maps singular and plural registry nouns to their command name.
var nounForms = map[string]string{
	"entity": "entity", "entities": "entity",
	"service": "service", "services": "service",
	"area": "area", "areas": "area",
	"device": "device", "devices": "device",
	"label": "label", "labels": "label",
}

// verbAliases maps spoken verbs to the subcommand they route to.
var verbAliases = map[string]string{
	"list": "list", "show": "list", "display": "list",
	"get":   "get",
	"state": "state",
}

// ReorderNaturalArgs rewrites a leading verb-noun pair into noun-verb form.
// Arguments that do not match the pattern come back unchanged.
func ReorderNaturalArgs(args []string) []string {
	if len(args) < 2 {
		return args
	}
	verb, ok := verbAliases[args[0]]
	if !ok {
		return args
	}
	cmd, ok := nounForms[args[1]]
	if !ok {
		return args
	}
	out := make([]string, 0, len(args))
	out = append(out, cmd, verb)
	out = append(out, args[2:]...)
	return out
}
