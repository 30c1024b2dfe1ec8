package models

import "fmt"

// ResolvedVia names the strategy that produced a resolution.
type ResolvedVia string

// Resolution strategies, in precedence order.
const (
	ViaExactID   ResolvedVia = "exact_id"
	ViaExactName ResolvedVia = "exact_name"
	ViaFuzzyName ResolvedVia = "fuzzy_name_match"
	ViaContext   ResolvedVia = "context_match"
	ViaVirtual   ResolvedVia = "virtual_entity"
)

// ResolutionOptions configures a single resolution request.
//
// The zero value is NOT the default; use DefaultResolutionOptions (or pass
// nil to Resolve) to get allow-fuzzy behaviour with the standard threshold.
// An explicitly constructed options struct is taken verbatim.
type ResolutionOptions struct {
	// Context supplies relationship hints for disambiguation,
	// e.g. {"league_id": "nfl"} when resolving a division name.
	Context map[string]string `json:"context,omitempty"`

	// AllowFuzzy enables non-exact name matching above MinimumMatchScore.
	AllowFuzzy bool `json:"allow_fuzzy"`

	// MinimumMatchScore is the inclusive similarity threshold for fuzzy
	// matches, in [0,1]. A candidate scoring exactly at the threshold
	// is accepted.
	MinimumMatchScore float64 `json:"minimum_match_score"`

	// ThrowOnError surfaces failures as typed errors instead of
	// collapsing them into an empty result.
	ThrowOnError bool `json:"throw_on_error"`
}

// DefaultMinimumMatchScore is the standard fuzzy-match acceptance threshold.
const DefaultMinimumMatchScore = 0.6

// DefaultResolutionOptions returns the standard per-request configuration:
// fuzzy matching on, threshold 0.6, quiet failures.
func DefaultResolutionOptions() ResolutionOptions {
	return ResolutionOptions{
		AllowFuzzy:        true,
		MinimumMatchScore: DefaultMinimumMatchScore,
	}
}

// ResolutionInfo is the explainability record attached to every successful
// resolution. The UI renders it as a confidence badge so a human can veto
// a wrong automatic match.
//
// Invariant: at most one of FuzzyMatched, ContextMatched and VirtualEntity
// is true; all three false means an exact match. ResolvedVia is always
// consistent with the flags.
type ResolutionInfo struct {
	// MatchScore is the similarity score of the chosen candidate for
	// name-based matches; nil for ID lookups and virtual entities.
	MatchScore     *float64    `json:"match_score"`
	FuzzyMatched   bool        `json:"fuzzy_matched"`
	ContextMatched bool        `json:"context_matched"`
	VirtualEntity  bool        `json:"virtual_entity"`
	ResolvedType   EntityType  `json:"resolved_entity_type"`
	ResolvedVia    ResolvedVia `json:"resolved_via"`
}

// Validate checks the flag/strategy consistency invariant.
func (i *ResolutionInfo) Validate() error {
	set := 0
	for _, f := range []bool{i.FuzzyMatched, i.ContextMatched, i.VirtualEntity} {
		if f {
			set++
		}
	}

	if set > 1 {
		return fmt.Errorf("resolution info: %d match flags set, want at most one", set)
	}

	want := map[ResolvedVia]struct{ fuzzy, context, virtual bool }{
		ViaExactID:   {},
		ViaExactName: {},
		ViaFuzzyName: {fuzzy: true},
		ViaContext:   {context: true},
		ViaVirtual:   {virtual: true},
	}

	w, ok := want[i.ResolvedVia]
	if !ok {
		return fmt.Errorf("resolution info: unknown resolved_via %q", i.ResolvedVia)
	}

	if w.fuzzy != i.FuzzyMatched || w.context != i.ContextMatched || w.virtual != i.VirtualEntity {
		return fmt.Errorf("resolution info: flags inconsistent with resolved_via %q", i.ResolvedVia)
	}

	return nil
}

// ResolutionResult is the outcome of one resolution request. Entity and
// Info are set together; both nil means "not found, no error requested"
// (the quiet default when ThrowOnError is false). Results may be shared
// cached values; callers must not mutate them.
type ResolutionResult struct {
	Entity *Entity         `json:"entity"`
	Info   *ResolutionInfo `json:"info"`
}

// Found reports whether the resolution produced an entity.
func (r *ResolutionResult) Found() bool {
	return r != nil && r.Entity != nil
}

// BatchRef is one named reference in a batch resolution request.
type BatchRef struct {
	Type     EntityType        `json:"entity_type"`
	IDOrName string            `json:"id_or_name"`
	Context  map[string]string `json:"context,omitempty"`
}

// GeneralErrorKey is the synthetic error key used when the batch dispatch
// itself failed before individual references could be processed.
const GeneralErrorKey = "_general"

// BatchResult is the outcome of a batch resolution. For every key in the
// input reference map, exactly one of Resolved[key] or Errors[key] is
// populated, unless the batch failed catastrophically, in which case
// Errors holds a single GeneralErrorKey entry and Resolved is empty.
type BatchResult struct {
	Resolved map[string]*Entity          `json:"resolved"`
	Errors   map[string]*ResolutionError `json:"errors"`
}
