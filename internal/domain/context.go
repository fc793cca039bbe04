package domain

import "time"

// DefaultContextTTL is how long a context record stays usable for elliptical
// follow-up commands.
const DefaultContextTTL = 5 * time.Minute

// ContextRecord is the most recent successful resolution, persisted to disk
// so follow-up utterances ("brighter") can reuse it across process runs.
// Exactly one record exists at a time; every successful resolution overwrites
// it and restarts the TTL window (sliding context).
type ContextRecord struct {
	EntityIDs  []string  `json:"entity_ids"`
	Action     Action    `json:"action"`
	AreaID     string    `json:"area_id,omitempty"`
	MatchKind  MatchKind `json:"match_kind"`
	Confidence float64   `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Usable reports whether the record is within its TTL window at now.
func (c ContextRecord) Usable(now time.Time, ttl time.Duration) bool {
	if c.UpdatedAt.IsZero() || len(c.EntityIDs) == 0 {
		return false
	}
	return now.Sub(c.UpdatedAt) <= ttl
}

// Age returns how long ago the record was written.
func (c ContextRecord) Age(now time.Time) time.Duration {
	return now.Sub(c.UpdatedAt)
}

// ContextState distinguishes why no usable context was returned; both cases
// surface as "no context" to the user, but diagnostics log which occurred.
type ContextState string

const (
	ContextUsable  ContextState = "usable"
	ContextExpired ContextState = "expired"
	ContextAbsent  ContextState = "absent"
)
