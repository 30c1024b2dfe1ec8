package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for validation.
var (
	ErrMissingType = errors.New("type is required")
	ErrMissingName = errors.New("name is required")
)

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}

// ErrorKind classifies resolution failures.
type ErrorKind string

const (
	// ErrKindNotFound means no entity matched under the active options.
	ErrKindNotFound ErrorKind = "not_found"

	// ErrKindLookupFailed means the underlying catalog call errored or
	// timed out.
	ErrKindLookupFailed ErrorKind = "lookup_failed"

	// ErrKindAmbiguous is reserved for a future strict mode where ties
	// above the threshold are surfaced rather than auto-picked. The
	// engine does not currently produce it.
	ErrKindAmbiguous ErrorKind = "ambiguous"
)

// ResolutionError is a typed resolution failure carrying enough detail
// for the UI to report which reference failed and why.
type ResolutionError struct {
	Kind       ErrorKind         `json:"error"`
	Message    string            `json:"message"`
	EntityType EntityType        `json:"entity_type"`
	Name       string            `json:"name"`
	Context    map[string]string `json:"context,omitempty"`

	cause error
}

// NewResolutionError creates a ResolutionError wrapping an optional cause.
func NewResolutionError(kind ErrorKind, typ EntityType, name string, ctx map[string]string, cause error) *ResolutionError {
	msg := fmt.Sprintf("resolving %s %q: %s", typ, name, kind)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}

	return &ResolutionError{
		Kind:       kind,
		Message:    msg,
		EntityType: typ,
		Name:       name,
		Context:    ctx,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *ResolutionError) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *ResolutionError) Unwrap() error { return e.cause }

// BatchError aggregates per-reference failures from a batch resolution.
// It is only raised after every reference has settled, so callers can
// show all problems at once.
type BatchError struct {
	Errors map[string]*ResolutionError
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return fmt.Sprintf("batch resolution failed for %d reference(s): %s",
		len(keys), strings.Join(keys, ", "))
}
