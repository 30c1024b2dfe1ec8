package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rosterdesk/rosterdesk/internal/cache"
	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

func newTestResolver(cat catalog.Client) (*Resolver, *cache.Cache) {
	store := cache.New()

	return NewResolver(cat, store, testLogger(), Config{}), store
}

func TestResolver_EmptyInput(t *testing.T) {
	cat := &fakeCatalog{}
	r, _ := newTestResolver(cat)

	for _, in := range []string{"", "   ", "\t"} {
		res, err := r.Resolve(context.Background(), models.TypeTeam, in, nil)
		if err != nil {
			t.Fatalf("input %q: unexpected error %v", in, err)
		}
		if res.Found() {
			t.Errorf("input %q: expected empty result", in)
		}
	}

	if id, name, _ := cat.calls(); id != 0 || name != 0 {
		t.Errorf("blank input must not reach the catalog; got %d id calls, %d name calls", id, name)
	}
}

func TestResolver_ExactID(t *testing.T) {
	lakers := entity(models.TypeTeam, "lakers", "Los Angeles Lakers", nil)
	cat := &fakeCatalog{entities: []*models.Entity{lakers}}
	r, _ := newTestResolver(cat)

	res, err := r.Resolve(context.Background(), models.TypeTeam, "lakers", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found() || res.Entity.ID != "lakers" {
		t.Fatalf("got %+v, want lakers", res.Entity)
	}
	if res.Info.ResolvedVia != models.ViaExactID {
		t.Errorf("got via %s, want %s", res.Info.ResolvedVia, models.ViaExactID)
	}
	if res.Info.MatchScore != nil {
		t.Error("ID lookups carry no match score")
	}
	if err := res.Info.Validate(); err != nil {
		t.Errorf("inconsistent info: %v", err)
	}
}

func TestResolver_ExactName(t *testing.T) {
	lakers := entity(models.TypeTeam, "t1", "Los Angeles Lakers", nil)
	cat := &fakeCatalog{entities: []*models.Entity{
		entity(models.TypeTeam, "t2", "Boston Celtics", nil),
		lakers,
	}}
	r, _ := newTestResolver(cat)

	res, err := r.Resolve(context.Background(), models.TypeTeam, "los angeles LAKERS", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found() || res.Entity.ID != "t1" {
		t.Fatalf("got %+v, want t1", res.Entity)
	}
	if res.Info.ResolvedVia != models.ViaExactName {
		t.Errorf("got via %s, want %s", res.Info.ResolvedVia, models.ViaExactName)
	}
	if res.Info.MatchScore == nil || *res.Info.MatchScore != 1.0 {
		t.Errorf("got score %v, want 1.0", res.Info.MatchScore)
	}
	if err := res.Info.Validate(); err != nil {
		t.Errorf("inconsistent info: %v", err)
	}
}

func TestResolver_FuzzyThresholdBoundary(t *testing.T) {
	lakers := entity(models.TypeTeam, "t1", "Los Angeles Lakers", nil)
	cat := &fakeCatalog{entities: []*models.Entity{lakers}}
	r, _ := newTestResolver(cat)

	query := "LA Lakers"
	score := r.Scorer().Score(models.TypeTeam, query, lakers.Name)
	if score >= 1.0 || score <= 0 {
		t.Fatalf("test premise broken: score %v should be fuzzy territory", score)
	}

	t.Run("accepted at exactly the threshold", func(t *testing.T) {
		opts := models.DefaultResolutionOptions()
		opts.MinimumMatchScore = score

		res, err := r.Resolve(context.Background(), models.TypeTeam, query, &opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Found() {
			t.Fatal("candidate at the threshold must be accepted")
		}
		if res.Info.ResolvedVia != models.ViaFuzzyName || !res.Info.FuzzyMatched {
			t.Errorf("got via %s fuzzy=%v, want fuzzy_name_match", res.Info.ResolvedVia, res.Info.FuzzyMatched)
		}
		if res.Info.MatchScore == nil || *res.Info.MatchScore != score {
			t.Errorf("got score %v, want %v", res.Info.MatchScore, score)
		}
		if err := res.Info.Validate(); err != nil {
			t.Errorf("inconsistent info: %v", err)
		}
	})

	t.Run("rejected just above the threshold", func(t *testing.T) {
		r2, _ := newTestResolver(&fakeCatalog{entities: []*models.Entity{lakers}})

		opts := models.DefaultResolutionOptions()
		opts.MinimumMatchScore = score + 0.0001

		res, err := r2.Resolve(context.Background(), models.TypeTeam, query, &opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Found() {
			t.Error("candidate below the threshold must be rejected")
		}
	})

	t.Run("rejected when fuzzy disabled", func(t *testing.T) {
		r3, _ := newTestResolver(&fakeCatalog{entities: []*models.Entity{lakers}})

		opts := models.DefaultResolutionOptions()
		opts.AllowFuzzy = false

		res, err := r3.Resolve(context.Background(), models.TypeTeam, query, &opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Found() {
			t.Error("fuzzy match must be rejected with AllowFuzzy off")
		}
	})
}

func TestResolver_CacheHitIsIdempotent(t *testing.T) {
	cat := &fakeCatalog{entities: []*models.Entity{
		entity(models.TypeLeague, "nfl", "National Football League", nil),
	}}
	r, _ := newTestResolver(cat)

	first, err := r.Resolve(context.Background(), models.TypeLeague, "nfl", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idBefore, nameBefore, _ := cat.calls()

	second, err := r.Resolve(context.Background(), models.TypeLeague, "nfl", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second != first {
		t.Error("cache hit should return the stored result")
	}

	if id, name, _ := cat.calls(); id != idBefore || name != nameBefore {
		t.Error("cache hit must not touch the catalog")
	}
}

func TestResolver_CacheKeysAreCaseSensitive(t *testing.T) {
	cat := &fakeCatalog{entities: []*models.Entity{
		entity(models.TypeLeague, "nfl", "National Football League", nil),
	}}
	r, _ := newTestResolver(cat)

	if _, err := r.Resolve(context.Background(), models.TypeLeague, "nfl", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idBefore, _, _ := cat.calls()

	if _, err := r.Resolve(context.Background(), models.TypeLeague, "NFL", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id, _, _ := cat.calls(); id == idBefore {
		t.Error("different casing is a different cache key and must hit the catalog")
	}
}

func TestResolver_ContextDisambiguation(t *testing.T) {
	nflCats := entity(models.TypeTeam, "t1", "Wildcats", map[string]string{"league_id": "nfl"})
	ncaaCats := entity(models.TypeTeam, "t2", "Wildcats", map[string]string{"league_id": "ncaa"})

	t.Run("context flips the pick", func(t *testing.T) {
		cat := &fakeCatalog{entities: []*models.Entity{nflCats, ncaaCats}}
		r, _ := newTestResolver(cat)

		opts := models.DefaultResolutionOptions()
		opts.Context = map[string]string{"league_id": "ncaa"}

		res, err := r.Resolve(context.Background(), models.TypeTeam, "Wildcats", &opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Found() || res.Entity.ID != "t2" {
			t.Fatalf("got %+v, want t2", res.Entity)
		}
		if res.Info.ResolvedVia != models.ViaContext || !res.Info.ContextMatched {
			t.Errorf("got via %s, want %s", res.Info.ResolvedVia, models.ViaContext)
		}
		if res.Info.FuzzyMatched || res.Info.VirtualEntity {
			t.Error("context match must not set sibling flags")
		}
		if err := res.Info.Validate(); err != nil {
			t.Errorf("inconsistent info: %v", err)
		}
	})

	t.Run("context agreeing with the top pick is not a context match", func(t *testing.T) {
		cat := &fakeCatalog{entities: []*models.Entity{nflCats, ncaaCats}}
		r, _ := newTestResolver(cat)

		opts := models.DefaultResolutionOptions()
		opts.Context = map[string]string{"league_id": "nfl"}

		res, err := r.Resolve(context.Background(), models.TypeTeam, "Wildcats", &opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Found() || res.Entity.ID != "t1" {
			t.Fatalf("got %+v, want t1", res.Entity)
		}
		if res.Info.ContextMatched {
			t.Error("context that confirms the existing top pick reports the base strategy")
		}
	})

	t.Run("no context candidate still resolves", func(t *testing.T) {
		cat := &fakeCatalog{entities: []*models.Entity{nflCats, ncaaCats}}
		r, _ := newTestResolver(cat)

		opts := models.DefaultResolutionOptions()
		opts.Context = map[string]string{"league_id": "mls"}

		res, err := r.Resolve(context.Background(), models.TypeTeam, "Wildcats", &opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Found() {
			t.Fatal("inconsistent context must deprioritize, never drop")
		}
	})
}

func TestResolver_VirtualFallback(t *testing.T) {
	cat := &fakeCatalog{}
	r, _ := newTestResolver(cat)

	res, err := r.Resolve(context.Background(), models.TypeBrand, "Acme Sports Drink", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found() {
		t.Fatal("virtual-capable type must produce a placeholder")
	}

	e := res.Entity
	if !e.Virtual {
		t.Error("placeholder must be flagged virtual")
	}
	if len(e.ID) <= len("virtual_") || e.ID[:len("virtual_")] != "virtual_" {
		t.Errorf("got ID %q, want virtual_ prefix", e.ID)
	}
	if e.Name != "Acme Sports Drink" {
		t.Errorf("got name %q, want the original input", e.Name)
	}
	if res.Info.ResolvedVia != models.ViaVirtual || !res.Info.VirtualEntity {
		t.Errorf("got via %s, want %s", res.Info.ResolvedVia, models.ViaVirtual)
	}
	if res.Info.MatchScore != nil {
		t.Error("virtual entities carry no match score")
	}
	if err := res.Info.Validate(); err != nil {
		t.Errorf("inconsistent info: %v", err)
	}

	// The placeholder is cached: re-resolving the same input returns the
	// same virtual entity instead of minting a new ID.
	again, err := r.Resolve(context.Background(), models.TypeBrand, "Acme Sports Drink", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Entity.ID != e.ID {
		t.Error("repeated resolution minted a second placeholder")
	}
}

func TestResolver_NonVirtualTypeNotFound(t *testing.T) {
	t.Run("quiet by default", func(t *testing.T) {
		r, _ := newTestResolver(&fakeCatalog{})

		res, err := r.Resolve(context.Background(), models.TypeTeam, "Ghost Team", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Found() {
			t.Error("teams are not virtual-capable; expected empty result")
		}
	})

	t.Run("typed error when throwing", func(t *testing.T) {
		r, _ := newTestResolver(&fakeCatalog{})

		opts := models.DefaultResolutionOptions()
		opts.ThrowOnError = true

		_, err := r.Resolve(context.Background(), models.TypeTeam, "Ghost Team", &opts)

		var rerr *models.ResolutionError
		if !errors.As(err, &rerr) {
			t.Fatalf("got %T, want *models.ResolutionError", err)
		}
		if rerr.Kind != models.ErrKindNotFound {
			t.Errorf("got kind %s, want %s", rerr.Kind, models.ErrKindNotFound)
		}
		if rerr.EntityType != models.TypeTeam || rerr.Name != "Ghost Team" {
			t.Errorf("error missing reference detail: %+v", rerr)
		}
	})
}

func TestResolver_RetriesOnce(t *testing.T) {
	t.Run("transient failure recovers", func(t *testing.T) {
		nfl := entity(models.TypeLeague, "nfl", "National Football League", nil)

		calls := 0
		cat := &fakeCatalog{}
		cat.fetchByIDFn = func(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error) {
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("connection reset")
			}

			return nfl, nil
		}

		r, _ := newTestResolver(cat)

		res, err := r.Resolve(context.Background(), models.TypeLeague, "nfl", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Found() {
			t.Fatal("retry should have recovered the lookup")
		}
		if calls != 2 {
			t.Errorf("got %d attempts, want 2", calls)
		}
	})

	t.Run("persistent failure gives up after two attempts", func(t *testing.T) {
		boom := fmt.Errorf("catalog down")

		calls := 0
		cat := &fakeCatalog{}
		cat.fetchByIDFn = func(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error) {
			calls++

			return nil, boom
		}

		r, _ := newTestResolver(cat)

		opts := models.DefaultResolutionOptions()
		opts.ThrowOnError = true

		_, err := r.Resolve(context.Background(), models.TypeLeague, "nfl", &opts)

		var rerr *models.ResolutionError
		if !errors.As(err, &rerr) {
			t.Fatalf("got %T, want *models.ResolutionError", err)
		}
		if rerr.Kind != models.ErrKindLookupFailed {
			t.Errorf("got kind %s, want %s", rerr.Kind, models.ErrKindLookupFailed)
		}
		if !errors.Is(err, boom) {
			t.Error("cause should be preserved through the error chain")
		}
		if calls != 2 {
			t.Errorf("got %d attempts, want exactly 2 (one retry, no more)", calls)
		}
	})

	t.Run("not found is never retried", func(t *testing.T) {
		cat := &fakeCatalog{}
		r, _ := newTestResolver(cat)

		if _, err := r.Resolve(context.Background(), models.TypeTeam, "Ghost Team", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if id, name, _ := cat.calls(); id != 1 || name != 1 {
			t.Errorf("got %d id calls and %d name calls, want 1 and 1", id, name)
		}
	})
}

func TestResolver_ClearCacheEntry(t *testing.T) {
	cat := &fakeCatalog{entities: []*models.Entity{
		entity(models.TypeLeague, "nfl", "National Football League", nil),
	}}
	r, _ := newTestResolver(cat)

	if _, err := r.Resolve(context.Background(), models.TypeLeague, "nfl", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.ClearCacheEntry(models.TypeLeague, "nfl")

	idBefore, _, _ := cat.calls()
	if _, err := r.Resolve(context.Background(), models.TypeLeague, "nfl", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, _, _ := cat.calls(); id == idBefore {
		t.Error("invalidated entry should force a fresh catalog lookup")
	}
}
