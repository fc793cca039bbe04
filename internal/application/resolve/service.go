// Package resolve turns parsed intents into executable action plans.
//
// Resolution walks a fixed pipeline: parse, context check (elliptical
// commands only), candidate matching per target phrase, service-call
// translation, then dispatch. Every attempt lands in history; the context
// record is updated on success only.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hactl/internal/domain"
	"hactl/internal/match"
	"hactl/internal/nlp"
	"hactl/internal/ports"
)

// defaultStepPct is the relative brightness/volume step applied when a
// dim/brighten or volume command carries no explicit percentage.
const defaultStepPct = 20

// Options tune one resolution run.
type Options struct {
	// DryRun resolves and plans but never dispatches.
	DryRun bool
	// ExactOnly disables alias and fuzzy matching.
	ExactOnly bool
}

// Result is the full outcome of one utterance.
type Result struct {
	Plan     domain.ActionPlan
	Outcomes []domain.DispatchOutcome
	Success  bool
}

// Service is the command resolver.
type Service struct {
	parser    *nlp.Parser
	matcher   *match.Matcher
	registry  ports.RegistryStore
	contexts  ports.ContextStore
	history   ports.HistoryStore
	transport ports.Transport
	log       ports.Logger

	now   func() time.Time
	newID func() string
}

// New wires a resolver from its collaborators.
func New(parser *nlp.Parser, matcher *match.Matcher, registry ports.RegistryStore, contexts ports.ContextStore, history ports.HistoryStore, transport ports.Transport, log ports.Logger) *Service {
	return &Service{
		parser:    parser,
		matcher:   matcher,
		registry:  registry,
		contexts:  contexts,
		history:   history,
		transport: transport,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Resolve processes one utterance end to end. The returned error is one of
// the typed resolution failures (SyntaxError, NoContextError, NoMatchError,
// AmbiguousMatchError, CacheUnavailableError) or a dispatch failure.
func (s *Service) Resolve(ctx context.Context, utterance string, opts Options) (Result, error) {
	intent, err := s.parser.Parse(utterance)
	if err != nil {
		s.recordFailure(utterance, err)
		return Result{}, err
	}
	s.log.Debug("parsed intent", map[string]interface{}{
		"action": intent.Action,
		"target": intent.Target,
	})

	var steps []domain.PlanStep
	var fromContext bool
	var areaID string
	if intent.Elliptical {
		steps, err = s.stepsFromContext(ctx, intent)
		fromContext = true
	} else {
		steps, areaID, err = s.stepsFromTarget(ctx, intent, opts.ExactOnly)
	}
	if err != nil {
		s.recordFailure(utterance, err)
		return Result{}, err
	}

	plan := domain.ActionPlan{
		ID:          s.newID(),
		Utterance:   utterance,
		Action:      intent.Action,
		Param:       intent.Param,
		Steps:       steps,
		FromContext: fromContext,
	}

	result := Result{Plan: plan, Success: true}
	if !opts.DryRun {
		result.Outcomes, result.Success = s.dispatch(ctx, plan)
	}

	if result.Success {
		kind, score := plan.WeakestMatch()
		if err := s.contexts.Record(domain.ContextRecord{
			EntityIDs:  plan.EntityIDs(),
			Action:     plan.Action,
			AreaID:     areaID,
			MatchKind:  kind,
			Confidence: score,
		}); err != nil {
			s.log.Warn("context record failed", map[string]interface{}{"error": err.Error()})
		}
	}
	s.record(plan, result)
	// Matching ran against whatever snapshot was on disk; bring stale
	// categories up to date now that the command itself is done.
	s.registry.RefreshStale(ctx)

	if !result.Success {
		return result, fmt.Errorf("dispatch failed for %d of %d targets", failedCount(result.Outcomes), len(plan.Steps))
	}
	return result, nil
}

// stepsFromContext serves elliptical commands ("brighter", "turn them off")
// from the persisted context.
func (s *Service) stepsFromContext(ctx context.Context, intent domain.Intent) ([]domain.PlanStep, error) {
	rec, state, err := s.contexts.Current()
	if err != nil {
		return nil, err
	}
	if state != domain.ContextUsable {
		return nil, &domain.NoContextError{State: state}
	}

	entities, err := s.registry.Entities(ctx, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Entity, len(entities))
	for _, e := range entities {
		byID[e.EntityID] = e
	}

	steps := make([]domain.PlanStep, 0, len(rec.EntityIDs))
	for _, id := range rec.EntityIDs {
		ent, ok := byID[id]
		if !ok {
			// Entity vanished from the registry since the last command.
			ent = domain.Entity{EntityID: id, Domain: entityDomain(id)}
		}
		call, err := translate(intent.Action, ent.Domain, intent.Param)
		if err != nil {
			return nil, err
		}
		steps = append(steps, domain.PlanStep{
			EntityID:     ent.EntityID,
			FriendlyName: ent.FriendlyName,
			Call:         call,
			MatchKind:    rec.MatchKind,
			Score:        rec.Confidence,
		})
	}
	return steps, nil
}

// stepsFromTarget resolves the explicit target phrase. Multi-target
// utterances are split on "and"; group phrases ("all lights") expand to every
// matching entity. The returned area ID is set when a single area qualified
// the expansion.
func (s *Service) stepsFromTarget(ctx context.Context, intent domain.Intent, exactOnly bool) ([]domain.PlanStep, string, error) {
	entities, err := s.registry.Entities(ctx, false)
	if err != nil {
		return nil, "", err
	}

	var steps []domain.PlanStep
	var areaID string
	seen := map[string]bool{}
	for _, phrase := range splitTargets(intent.Target) {
		var resolved []resolvedEntity
		if isGroupPhrase(phrase) {
			var aid string
			resolved, aid, err = s.expandGroup(ctx, phrase, intent.Action, entities)
			if err != nil {
				return nil, "", err
			}
			areaID = aid
		} else {
			one, err := s.matchOne(phrase, intent.Action, entities, exactOnly)
			if err != nil {
				return nil, "", err
			}
			resolved = []resolvedEntity{one}
		}

		for _, r := range resolved {
			if seen[r.entity.EntityID] {
				continue
			}
			seen[r.entity.EntityID] = true
			call, err := translate(intent.Action, r.entity.Domain, intent.Param)
			if err != nil {
				return nil, "", err
			}
			steps = append(steps, domain.PlanStep{
				EntityID:     r.entity.EntityID,
				FriendlyName: r.entity.FriendlyName,
				Call:         call,
				MatchKind:    r.kind,
				Score:        r.score,
			})
		}
	}
	return steps, areaID, nil
}

type resolvedEntity struct {
	entity domain.Entity
	kind   domain.MatchKind
	score  float64
}

// matchOne resolves a single phrase to a single entity or fails with a typed
// error.
func (s *Service) matchOne(phrase string, action domain.Action, entities []domain.Entity, exactOnly bool) (resolvedEntity, error) {
	filtered := filterByDomains(entities, action.DomainFilter())
	candidates := entityCandidates(filtered)
	res := s.matcher.Match(phrase, candidates, exactOnly)
	switch res.Kind {
	case domain.MatchAmbiguous:
		return resolvedEntity{}, &domain.AmbiguousMatchError{Phrase: phrase, Tied: res.Tied}
	case domain.MatchNone:
		return resolvedEntity{}, &domain.NoMatchError{Phrase: phrase, Suggestions: res.Suggestions}
	}
	for _, e := range filtered {
		if e.EntityID == res.Best.ID {
			return resolvedEntity{entity: e, kind: res.Kind, score: res.Score}, nil
		}
	}
	return resolvedEntity{}, &domain.NoMatchError{Phrase: phrase}
}

// expandGroup resolves "all"/"everything" phrases. Qualifier words narrow by
// entity domain ("all lights") and by area ("all kitchen lights"); with no
// qualifier the action's own domain filter applies.
func (s *Service) expandGroup(ctx context.Context, phrase string, action domain.Action, entities []domain.Entity) ([]resolvedEntity, string, error) {
	domains, areaWords := parseGroupQualifiers(phrase)
	if len(domains) == 0 {
		domains = action.DomainFilter()
	}

	var areaID string
	if len(areaWords) > 0 {
		areas, err := s.registry.Areas(ctx, false)
		if err != nil {
			return nil, "", err
		}
		res := s.matcher.Match(strings.Join(areaWords, " "), areaCandidates(areas), false)
		switch res.Kind {
		case domain.MatchAmbiguous:
			return nil, "", &domain.AmbiguousMatchError{Phrase: phrase, Tied: res.Tied}
		case domain.MatchNone:
			return nil, "", &domain.NoMatchError{Phrase: phrase, Suggestions: res.Suggestions}
		}
		areaID = res.Best.ID
	}

	var out []resolvedEntity
	for _, e := range filterByDomains(entities, domains) {
		if areaID != "" && e.AreaID != areaID {
			continue
		}
		out = append(out, resolvedEntity{entity: e, kind: domain.MatchExact, score: 1.0})
	}
	if len(out) == 0 {
		return nil, "", &domain.NoMatchError{Phrase: phrase}
	}
	return out, areaID, nil
}

func (s *Service) dispatch(ctx context.Context, plan domain.ActionPlan) ([]domain.DispatchOutcome, bool) {
	outcomes := make([]domain.DispatchOutcome, 0, len(plan.Steps))
	success := true
	for _, step := range plan.Steps {
		outcome, err := s.transport.Dispatch(ctx, step.EntityID, step.Call)
		if err != nil {
			outcome = domain.DispatchOutcome{EntityID: step.EntityID, Error: err.Error()}
		}
		if !outcome.Success {
			success = false
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, success
}

func (s *Service) record(plan domain.ActionPlan, result Result) {
	kind, score := plan.WeakestMatch()
	entry := domain.HistoryEntry{
		ID:             s.newID(),
		Timestamp:      s.now(),
		Utterance:      plan.Utterance,
		Interpretation: interpret(plan),
		Action:         plan.Action,
		Targets:        plan.EntityIDs(),
		MatchKind:      kind,
		Confidence:     score,
		Success:        result.Success,
	}
	if !result.Success {
		entry.Error = outcomeErrors(result.Outcomes)
	}
	if err := s.history.Append(entry); err != nil {
		s.log.Warn("history append failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) recordFailure(utterance string, cause error) {
	entry := domain.HistoryEntry{
		ID:        s.newID(),
		Timestamp: s.now(),
		Utterance: utterance,
		MatchKind: domain.MatchNone,
		Error:     cause.Error(),
	}
	if err := s.history.Append(entry); err != nil {
		s.log.Warn("history append failed", map[string]interface{}{"error": err.Error()})
	}
}

// translate maps an action to the concrete hub service call for one entity
// domain. Verbs shift meaning per domain: "open" unlocks a lock but opens a
// cover.
func translate(action domain.Action, entityDomain string, param domain.Param) (domain.ServiceCall, error) {
	call := domain.ServiceCall{Domain: entityDomain}
	switch action {
	case domain.ActionOn:
		call.Service = "turn_on"
	case domain.ActionOff:
		call.Service = "turn_off"
	case domain.ActionToggle:
		call.Service = "toggle"
	case domain.ActionOpen:
		switch entityDomain {
		case "lock":
			call.Service = "unlock"
		case "valve":
			call.Service = "open_valve"
		default:
			call.Domain, call.Service = "cover", "open_cover"
		}
	case domain.ActionClose:
		switch entityDomain {
		case "lock":
			call.Service = "lock"
		case "valve":
			call.Service = "close_valve"
		default:
			call.Domain, call.Service = "cover", "close_cover"
		}
	case domain.ActionDim, domain.ActionBrighten:
		call.Service = "turn_on"
		if param.Kind == domain.ParamPercent {
			call.Data = map[string]any{"brightness": pctToBrightness(param.Percent)}
		} else {
			step := defaultStepPct
			if action == domain.ActionDim {
				step = -defaultStepPct
			}
			call.Data = map[string]any{"brightness_step_pct": step}
		}
	case domain.ActionSet:
		switch param.Kind {
		case domain.ParamPercent:
			if entityDomain == "media_player" {
				call.Service = "volume_set"
				call.Data = map[string]any{"volume_level": pctToVolume(param.Percent)}
			} else {
				call.Service = "turn_on"
				call.Data = map[string]any{"brightness": pctToBrightness(param.Percent)}
			}
		case domain.ParamColor:
			call.Service = "turn_on"
			call.Data = map[string]any{"color_name": param.Color}
		default:
			return domain.ServiceCall{}, fmt.Errorf("set requires a percentage or color")
		}
	case domain.ActionVolumeUp, domain.ActionVolumeDown:
		if param.Kind == domain.ParamPercent {
			call.Service = "volume_set"
			call.Data = map[string]any{"volume_level": pctToVolume(param.Percent)}
		} else if action == domain.ActionVolumeUp {
			call.Service = "volume_up"
		} else {
			call.Service = "volume_down"
		}
	case domain.ActionMute:
		call.Service = "volume_mute"
		call.Data = map[string]any{"is_volume_muted": true}
	case domain.ActionUnmute:
		call.Service = "volume_mute"
		call.Data = map[string]any{"is_volume_muted": false}
	default:
		return domain.ServiceCall{}, fmt.Errorf("unsupported action %q", action)
	}
	return call, nil
}

// pctToBrightness scales 0-100 to the hub's 0-255 brightness range.
func pctToBrightness(pct int) int {
	return (pct*255 + 50) / 100
}

// pctToVolume scales 0-100 to the hub's 0.0-1.0 volume range.
func pctToVolume(pct int) float64 {
	return float64(pct) / 100.0
}

// splitTargets breaks a multi-target phrase on "and". The parser has already
// normalized comma separators into "and" tokens.
func splitTargets(target string) []string {
	parts := strings.Split(target, " and ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isGroupPhrase(phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}
	return words[0] == "all" || words[0] == "every" || phrase == "everything"
}

// domainNouns maps group-phrase qualifier words to entity domains.
var domainNouns = map[string]string{
	"light":   "light",
	"fan":     "fan",
	"switch":  "switch",
	"plug":    "switch",
	"outlet":  "switch",
	"cover":   "cover",
	"blind":   "cover",
	"curtain": "cover",
	"shade":   "cover",
	"lock":    "lock",
	"valve":   "valve",
	"speaker": "media_player",
	"player":  "media_player",
}

// parseGroupQualifiers splits a group phrase's trailing words into domain
// qualifiers and area words. "all kitchen lights" yields domain "light" and
// area words ["kitchen"].
func parseGroupQualifiers(phrase string) (domains []string, areaWords []string) {
	words := strings.Fields(phrase)
	if len(words) > 0 && (words[0] == "all" || words[0] == "every" || words[0] == "everything") {
		words = words[1:]
	}
	for _, w := range words {
		if d, ok := domainNouns[singularNoun(w)]; ok {
			domains = append(domains, d)
			continue
		}
		areaWords = append(areaWords, w)
	}
	return domains, areaWords
}

func singularNoun(w string) string {
	switch {
	case strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 1:
		return w[:len(w)-1]
	}
	return w
}

func filterByDomains(entities []domain.Entity, domains []string) []domain.Entity {
	if len(domains) == 0 {
		return entities
	}
	allowed := make(map[string]bool, len(domains))
	for _, d := range domains {
		allowed[d] = true
	}
	out := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		if allowed[e.Domain] {
			out = append(out, e)
		}
	}
	return out
}

func entityCandidates(entities []domain.Entity) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(entities))
	for _, e := range entities {
		out = append(out, domain.Candidate{
			ID:     e.EntityID,
			Name:   e.FriendlyName,
			Domain: e.Domain,
		})
	}
	return out
}

func areaCandidates(areas []domain.Area) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(areas))
	for _, a := range areas {
		out = append(out, domain.Candidate{
			ID:    a.AreaID,
			Name:  a.Name,
			Extra: a.Aliases,
		})
	}
	return out
}

func entityDomain(entityID string) string {
	if i := strings.IndexByte(entityID, '.'); i > 0 {
		return entityID[:i]
	}
	return entityID
}

func interpret(plan domain.ActionPlan) string {
	return fmt.Sprintf("%s -> %s", plan.Action, strings.Join(plan.EntityIDs(), ", "))
}

func failedCount(outcomes []domain.DispatchOutcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.Success {
			n++
		}
	}
	return n
}

func outcomeErrors(outcomes []domain.DispatchOutcome) string {
	var parts []string
	for _, o := range outcomes {
		if !o.Success {
			msg := o.Error
			if msg == "" {
				msg = "dispatch failed"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", o.EntityID, msg))
		}
	}
	return strings.Join(parts, "; ")
}
