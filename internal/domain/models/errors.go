package models

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a 404 from the filing repository.
var ErrNotFound = errors.New("edgar: not found")

// ConfigurationError is fatal and raised before any work starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// RetrievalError wraps the last underlying cause after retry exhaustion.
type RetrievalError struct {
	URL      string
	Attempts int
	Cause    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed after %d attempts: %s: %v", e.Attempts, e.URL, e.Cause)
}

func (e *RetrievalError) Unwrap() error { return e.Cause }

// ResolveFailure distinguishes why a name or identifier could not be resolved.
type ResolveFailure string

const (
	ResolveNoMatch   ResolveFailure = "no_match"
	ResolveAmbiguous ResolveFailure = "ambiguous"
)

// EntityNotResolvedError reports a failed or ambiguous entity lookup.
// Ambiguity is an expected outcome, not exceptional control flow; callers
// switch on Failure rather than matching error strings.
type EntityNotResolvedError struct {
	Input      string
	Failure    ResolveFailure
	Candidates []string
}

func (e *EntityNotResolvedError) Error() string {
	if e.Failure == ResolveAmbiguous {
		return fmt.Sprintf("entity %q is ambiguous (%d candidates)", e.Input, len(e.Candidates))
	}
	return fmt.Sprintf("entity %q not found", e.Input)
}

// ParseError reports an information table that could not be parsed,
// either because no entries were found or because the skip fraction
// exceeded the failure threshold.
type ParseError struct {
	Total   int
	Skipped int
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("information table parse failed: %s", e.Reason)
	}
	return fmt.Sprintf("information table parse failed: %d of %d entries malformed", e.Skipped, e.Total)
}
