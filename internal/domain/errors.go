package domain

import (
	"fmt"
	"strings"
)

// Resolution failures are terminal for the invocation; each maps to a
// distinct user-visible condition. All types here are checkable via
// errors.As.

// SyntaxError means the utterance could not be parsed. Span carries the
// unrecognized portion of the input.
type SyntaxError struct {
	Input string
	Span  string
}

func (e *SyntaxError) Error() string {
	if e.Span == "" {
		return fmt.Sprintf("cannot parse %q", e.Input)
	}
	return fmt.Sprintf("cannot parse %q: unrecognized %q", e.Input, e.Span)
}

// NoContextError means an elliptical command arrived with no usable prior
// context. State records whether a record was expired or never existed.
type NoContextError struct {
	State ContextState
}

func (e *NoContextError) Error() string {
	if e.State == ContextExpired {
		return "previous command context has expired; name a target explicitly"
	}
	return "no previous command to refer to; name a target explicitly"
}

// NoMatchError means every candidate scored below the acceptance threshold.
// Suggestions carries the closest near-misses for user feedback.
type NoMatchError struct {
	Phrase      string
	Suggestions []Scored
}

func (e *NoMatchError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("nothing matches %q", e.Phrase)
	}
	names := make([]string, 0, len(e.Suggestions))
	for _, s := range e.Suggestions {
		names = append(names, s.Candidate.ID)
	}
	return fmt.Sprintf("nothing matches %q; closest: %s", e.Phrase, strings.Join(names, ", "))
}

// AmbiguousMatchError means multiple candidates tied at the top score. The
// full tie set is surfaced so the caller can prompt; it is never auto-broken.
type AmbiguousMatchError struct {
	Phrase string
	Tied   []Scored
}

func (e *AmbiguousMatchError) Error() string {
	names := make([]string, 0, len(e.Tied))
	for _, s := range e.Tied {
		names = append(names, s.Candidate.ID)
	}
	return fmt.Sprintf("%q is ambiguous between: %s", e.Phrase, strings.Join(names, ", "))
}

// CacheUnavailableError means a refresh failed and no prior snapshot exists.
// Distinct from NoMatchError: this is a connectivity/permission failure, not
// an absence of real candidates.
type CacheUnavailableError struct {
	Category Category
	Cause    error
}

func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("no %s cache and refresh failed: %v", e.Category, e.Cause)
}

func (e *CacheUnavailableError) Unwrap() error { return e.Cause }

// CacheRefreshError means a refresh failed but a usable stale snapshot
// remains. Logged, not fatal: resolution proceeds on stale data.
type CacheRefreshError struct {
	Category Category
	Cause    error
}

func (e *CacheRefreshError) Error() string {
	return fmt.Sprintf("refreshing %s cache: %v", e.Category, e.Cause)
}

func (e *CacheRefreshError) Unwrap() error { return e.Cause }
