package domain

// ServiceCall is one concrete hub invocation: domain.service applied to an
// entity with a data payload.
type ServiceCall struct {
	Domain  string         `json:"domain"`
	Service string         `json:"service"`
	Data    map[string]any `json:"data,omitempty"`
}

// PlanStep pairs one resolved entity with the call that will be dispatched
// for it.
type PlanStep struct {
	EntityID     string      `json:"entity_id"`
	FriendlyName string      `json:"friendly_name,omitempty"`
	Call         ServiceCall `json:"call"`
	MatchKind    MatchKind   `json:"match_kind"`
	Score        float64     `json:"score"`
}

// ActionPlan is the fully resolved, ready-to-dispatch output of the command
// resolver: one step per resolved entity.
type ActionPlan struct {
	ID          string     `json:"id"`
	Utterance   string     `json:"utterance"`
	Action      Action     `json:"action"`
	Param       Param      `json:"param"`
	Steps       []PlanStep `json:"steps"`
	FromContext bool       `json:"from_context"`
	Notes       []string   `json:"notes,omitempty"`
}

// EntityIDs lists the targeted entity identifiers in plan order.
func (p ActionPlan) EntityIDs() []string {
	ids := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		ids = append(ids, step.EntityID)
	}
	return ids
}

// WeakestMatch returns the lowest-confidence match kind and score across the
// plan, used for context and history records.
func (p ActionPlan) WeakestMatch() (MatchKind, float64) {
	kind := MatchExact
	score := 1.0
	for _, step := range p.Steps {
		if step.Score < score {
			score = step.Score
			kind = step.MatchKind
		}
	}
	if len(p.Steps) == 0 {
		return MatchNone, 0
	}
	return kind, score
}

// DispatchOutcome is the transport's report for one executed plan step.
type DispatchOutcome struct {
	EntityID string `json:"entity_id"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}
