// Package resolve implements the entity resolution engine: scoring,
// context disambiguation, single and batch resolution, and screen-level
// preloading, all backed by the process-wide cache.
package resolve

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

// MatchClass classifies a similarity score against a threshold.
type MatchClass string

// Match classifications.
const (
	MatchExact MatchClass = "exact"
	MatchFuzzy MatchClass = "fuzzy"
	MatchNone  MatchClass = "none"
)

// acronymScore is assigned when one side is the initials of the other
// ("NFL" vs "National Football League"): below exact, above the default
// threshold. Acronym matching is an explicit scorer feature, classified
// as fuzzy so the UI still flags it for human review.
const acronymScore = 0.9

// Weights for the similarity blend. Token-set overlap dominates so that
// word-order and partial-name queries ("LA Lakers" for "Los Angeles
// Lakers") survive the threshold; edit distance keeps close spellings
// competitive.
const (
	editWeight  = 0.4
	tokenWeight = 0.6
)

// Scorer computes name similarity scores in [0,1]. It is pure and
// deterministic: no side effects, same inputs always produce the same
// score. Cache correctness and test reproducibility depend on this.
type Scorer struct {
	// keepHyphens lists entity types whose names embed meaningful
	// hyphenated codes; for those, hyphens survive normalization.
	keepHyphens map[models.EntityType]bool
}

// NewScorer creates a Scorer with the default per-type punctuation
// policy: broadcast rights keep hyphens (rights codes like "TV-2024-US"),
// every other type folds punctuation to spaces.
func NewScorer() *Scorer {
	return &Scorer{
		keepHyphens: map[models.EntityType]bool{
			models.TypeBroadcastRight: true,
		},
	}
}

// Normalize lower-cases, folds non-semantic punctuation and collapses
// whitespace. Normalization is scoring-internal only: cache keys use the
// caller's raw input.
func (s *Scorer) Normalize(typ models.EntityType, in string) string {
	var b strings.Builder
	b.Grow(len(in))

	for _, r := range strings.ToLower(in) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' && s.keepHyphens[typ]:
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Score computes the similarity between a query and a candidate name for
// the given entity type. 1.0 means exact after normalization; non-exact
// scores never reach 1.0.
func (s *Scorer) Score(typ models.EntityType, query, candidateName string) float64 {
	q := s.Normalize(typ, query)
	c := s.Normalize(typ, candidateName)

	if q == "" || c == "" {
		if q == c {
			return 1.0
		}

		return 0.0
	}

	if q == c {
		return 1.0
	}

	if acronymOf(q, c) || acronymOf(c, q) {
		return acronymScore
	}

	score := editWeight*editRatio(q, c) + tokenWeight*tokenSetRatio(q, c)
	if score > acronymScore {
		score = acronymScore
	}

	return score
}

// Classify buckets a score relative to the acceptance threshold.
func (s *Scorer) Classify(score, minimumMatchScore float64) MatchClass {
	switch {
	case score >= 1.0:
		return MatchExact
	case score >= minimumMatchScore:
		return MatchFuzzy
	default:
		return MatchNone
	}
}

// acronymOf reports whether short is the initials of long. Requires a
// single-token short side of at least two runes and a multi-word long
// side, so "A" never matches everything.
func acronymOf(short, long string) bool {
	if strings.ContainsRune(short, ' ') || len([]rune(short)) < 2 {
		return false
	}

	words := strings.Fields(long)
	if len(words) < 2 {
		return false
	}

	var initials strings.Builder
	for _, w := range words {
		r := []rune(w)
		initials.WriteRune(r[0])
	}

	return initials.String() == short
}

// editRatio is the normalized Levenshtein similarity of two strings.
func editRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))

	longest := la
	if lb > longest {
		longest = lb
	}

	if longest == 0 {
		return 1.0
	}

	d := levenshtein.ComputeDistance(a, b)

	return 1.0 - float64(d)/float64(longest)
}

// tokenSetRatio compares the shared-token core of both strings against
// each full token set (the classic token-set heuristic). It is high when
// one name's words are a subset of the other's, regardless of order.
func tokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)

	var inter, restA, restB []string
	for t := range ta {
		if tb[t] {
			inter = append(inter, t)
		} else {
			restA = append(restA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			restB = append(restB, t)
		}
	}

	sort.Strings(inter)
	sort.Strings(restA)
	sort.Strings(restB)

	core := strings.Join(inter, " ")
	full1 := strings.TrimSpace(core + " " + strings.Join(restA, " "))
	full2 := strings.TrimSpace(core + " " + strings.Join(restB, " "))

	best := editRatio(full1, full2)
	if core != "" {
		if r := editRatio(core, full1); r > best {
			best = r
		}
		if r := editRatio(core, full2); r > best {
			best = r
		}
	}

	return best
}

// tokenSet splits a normalized string into its unique tokens.
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}

	return set
}
