package resolve

import (
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// ScoredCandidate pairs a candidate entity with its similarity score for
// the current query.
type ScoredCandidate struct {
	Entity *models.Entity
	Score  float64
}

// MatchesContext reports whether the entity carries every supplied
// context field with the exact expected value. All keys must match; a
// missing field counts as a mismatch. With no context supplied, nothing
// matched, so this reports false.
func MatchesContext(e *models.Entity, context map[string]string) bool {
	if e == nil || len(context) == 0 {
		return false
	}

	for k, want := range context {
		if e.ContextFields[k] != want {
			return false
		}
	}

	return true
}

// Disambiguate reorders candidates so that context-consistent ones come
// first. The partition is stable: within each group the incoming order
// (score-descending) is preserved. Context-inconsistent candidates are
// deprioritized, never dropped, so a stale context hint cannot turn a
// resolvable reference into a not-found. With no context or fewer than
// two candidates the input is returned unchanged.
func Disambiguate(candidates []ScoredCandidate, context map[string]string) []ScoredCandidate {
	if len(context) == 0 || len(candidates) < 2 {
		return candidates
	}

	ordered := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if MatchesContext(c.Entity, context) {
			ordered = append(ordered, c)
		}
	}
	for _, c := range candidates {
		if !MatchesContext(c.Entity, context) {
			ordered = append(ordered, c)
		}
	}

	return ordered
}
