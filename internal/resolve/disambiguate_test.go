package resolve

import (
	"testing"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

func TestMatchesContext(t *testing.T) {
	wildcats := entity(models.TypeTeam, "t1", "Wildcats", map[string]string{
		"league_id": "ncaa",
		"sport":     "basketball",
	})

	tests := []struct {
		name    string
		entity  *models.Entity
		context map[string]string
		want    bool
	}{
		{"single key match", wildcats, map[string]string{"league_id": "ncaa"}, true},
		{"all keys match", wildcats, map[string]string{"league_id": "ncaa", "sport": "basketball"}, true},
		{"one key mismatch fails all", wildcats, map[string]string{"league_id": "ncaa", "sport": "football"}, false},
		{"missing field counts as mismatch", wildcats, map[string]string{"division_id": "east"}, false},
		{"empty context matches nothing", wildcats, map[string]string{}, false},
		{"nil entity", nil, map[string]string{"league_id": "ncaa"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesContext(tt.entity, tt.context); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisambiguate(t *testing.T) {
	a := ScoredCandidate{Entity: entity(models.TypeTeam, "a", "Wildcats", map[string]string{"league_id": "nfl"}), Score: 0.9}
	b := ScoredCandidate{Entity: entity(models.TypeTeam, "b", "Wildcats", map[string]string{"league_id": "ncaa"}), Score: 0.8}
	c := ScoredCandidate{Entity: entity(models.TypeTeam, "c", "Wildcats", map[string]string{"league_id": "ncaa"}), Score: 0.7}

	t.Run("stable partition, nothing dropped", func(t *testing.T) {
		got := Disambiguate([]ScoredCandidate{a, b, c}, map[string]string{"league_id": "ncaa"})

		wantOrder := []string{"b", "c", "a"}
		if len(got) != len(wantOrder) {
			t.Fatalf("got %d candidates, want %d", len(got), len(wantOrder))
		}
		for i, id := range wantOrder {
			if got[i].Entity.ID != id {
				t.Errorf("position %d: got %s, want %s", i, got[i].Entity.ID, id)
			}
		}
	})

	t.Run("no context leaves order unchanged", func(t *testing.T) {
		got := Disambiguate([]ScoredCandidate{a, b, c}, nil)
		if got[0].Entity.ID != "a" || got[1].Entity.ID != "b" || got[2].Entity.ID != "c" {
			t.Error("order changed without context")
		}
	})

	t.Run("no match keeps score order", func(t *testing.T) {
		got := Disambiguate([]ScoredCandidate{a, b, c}, map[string]string{"league_id": "mls"})
		if got[0].Entity.ID != "a" {
			t.Errorf("got %s first, want a", got[0].Entity.ID)
		}
		if len(got) != 3 {
			t.Errorf("got %d candidates, want 3; inconsistent candidates are deprioritized, never dropped", len(got))
		}
	})

	t.Run("single candidate untouched", func(t *testing.T) {
		in := []ScoredCandidate{a}
		got := Disambiguate(in, map[string]string{"league_id": "ncaa"})
		if len(got) != 1 || got[0].Entity.ID != "a" {
			t.Error("single candidate should pass through")
		}
	})
}
