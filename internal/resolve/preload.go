package resolve

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rosterdesk/rosterdesk/internal/cache"
	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/metrics"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// EntitySet names a screen-level bundle of entity types preloaded
// together so form dropdowns open warm.
type EntitySet string

// Known entity sets.
const (
	SetTeamForm      EntitySet = "team_form"
	SetLeagueForm    EntitySet = "league_form"
	SetBroadcastForm EntitySet = "broadcast_form"
)

var entitySets = map[EntitySet][]models.EntityType{
	SetTeamForm: {
		models.TypeLeague,
		models.TypeDivisionConference,
		models.TypeStadium,
		models.TypeBrand,
	},
	SetLeagueForm: {
		models.TypeBrand,
		models.TypeBroadcastRight,
	},
	SetBroadcastForm: {
		models.TypeLeague,
		models.TypeTeam,
	},
}

// EntitySetTypes returns the entity types belonging to a set.
func EntitySetTypes(set EntitySet) ([]models.EntityType, bool) {
	types, ok := entitySets[set]

	return types, ok
}

// DefaultPreloadPageSize is the catalog page size used while draining a
// type during preload.
const DefaultPreloadPageSize = 200

// contextFieldTargets maps relationship context-field keys to the entity
// type they reference.
var contextFieldTargets = map[string]models.EntityType{
	"league_id":              models.TypeLeague,
	"team_id":                models.TypeTeam,
	"stadium_id":             models.TypeStadium,
	"brand_id":               models.TypeBrand,
	"division_conference_id": models.TypeDivisionConference,
	"broadcast_right_id":     models.TypeBroadcastRight,
}

// RelationshipLoader preloads entity sets and hydrates related entities
// for already-resolved ones. Concurrent preloads of the same type are
// coalesced through a singleflight group when dedupe is requested.
type RelationshipLoader struct {
	catalog  catalog.Client
	resolver *Resolver
	store    *cache.Cache
	log      *logrus.Logger
	flight   singleflight.Group
}

// NewRelationshipLoader creates a RelationshipLoader.
func NewRelationshipLoader(cat catalog.Client, r *Resolver, store *cache.Cache, log *logrus.Logger) *RelationshipLoader {
	return &RelationshipLoader{catalog: cat, resolver: r, store: store, log: log}
}

// PreloadEntitySet loads every type in the set, caching both the per-type
// list and per-entity resolution entries (by ID and by name) so that
// subsequent resolutions for preloaded entities are cache hits. Types
// load concurrently; pageSize of 0 or less selects the default. With
// dedupe set, concurrent preloads of the same type share one catalog
// drain.
func (l *RelationshipLoader) PreloadEntitySet(ctx context.Context, set EntitySet, pageSize int, dedupe bool) (map[models.EntityType][]*models.Entity, error) {
	types, ok := entitySets[set]
	if !ok {
		return nil, fmt.Errorf("unknown entity set %q", set)
	}

	if pageSize <= 0 {
		pageSize = DefaultPreloadPageSize
	}

	out := make(map[models.EntityType][]*models.Entity, len(types))

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, typ := range types {
		g.Go(func() error {
			ents, err := l.loadType(gctx, typ, pageSize, dedupe)
			if err != nil {
				return fmt.Errorf("preloading %s: %w", typ, err)
			}

			mu.Lock()
			out[typ] = ents
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"set":   set,
		"types": len(types),
	}).Debug("entity set preloaded")

	return out, nil
}

// LoadRelationshipsForMultiple hydrates the entities referenced by the
// context fields of the given source entities. The result maps source
// entity ID to related entities grouped by type. targetFilter, when
// non-empty, restricts hydration to that type. With dedupe set, each
// distinct reference is resolved once no matter how many sources share
// it; otherwise every occurrence resolves independently (still cheap
// once the first occurrence is cached).
func (l *RelationshipLoader) LoadRelationshipsForMultiple(ctx context.Context, entities []*models.Entity, sourceType, targetFilter models.EntityType, dedupe bool) (map[string]map[models.EntityType][]*models.Entity, error) {
	type refKey struct {
		typ models.EntityType
		id  string
	}

	type want struct {
		source string
		ref    refKey
	}

	var wants []want
	for _, e := range entities {
		if e == nil || e.Type != sourceType {
			continue
		}

		for field, id := range e.ContextFields {
			typ, ok := contextFieldTargets[field]
			if !ok || id == "" {
				continue
			}
			if targetFilter != "" && typ != targetFilter {
				continue
			}

			wants = append(wants, want{source: e.ID, ref: refKey{typ: typ, id: id}})
		}
	}

	resolved := make(map[refKey]*models.Entity)

	var mu sync.Mutex

	load := func(gctx context.Context, rk refKey) error {
		res, err := l.resolver.Resolve(gctx, rk.typ, rk.id, nil)
		if err != nil {
			return err
		}
		if !res.Found() {
			// Dangling references are tolerated; the source entity is
			// still returned without that relationship.
			return nil
		}

		mu.Lock()
		resolved[rk] = res.Entity
		mu.Unlock()

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultBatchConcurrency)

	if dedupe {
		seen := make(map[refKey]bool, len(wants))
		shared := 0
		for _, w := range wants {
			if seen[w.ref] {
				shared++

				continue
			}
			seen[w.ref] = true

			g.Go(func() error { return load(gctx, w.ref) })
		}
		if shared > 0 {
			metrics.CacheShares.Add(float64(shared))
		}
	} else {
		for _, w := range wants {
			g.Go(func() error { return load(gctx, w.ref) })
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]map[models.EntityType][]*models.Entity)
	for _, w := range wants {
		ent, ok := resolved[w.ref]
		if !ok {
			continue
		}

		byType := out[w.source]
		if byType == nil {
			byType = make(map[models.EntityType][]*models.Entity)
			out[w.source] = byType
		}
		byType[w.ref.typ] = append(byType[w.ref.typ], ent)
	}

	// Context fields iterate in map order; sort for stable output.
	for _, byType := range out {
		for _, ents := range byType {
			sort.Slice(ents, func(i, j int) bool { return ents[i].ID < ents[j].ID })
		}
	}

	return out, nil
}

// loadType returns the cached list for typ or drains the catalog,
// seeding the cache on the way.
func (l *RelationshipLoader) loadType(ctx context.Context, typ models.EntityType, pageSize int, dedupe bool) ([]*models.Entity, error) {
	key := ListCacheKey(typ)
	if v, ok := l.store.Get(key); ok {
		if ents, ok := v.([]*models.Entity); ok {
			return ents, nil
		}
	}

	if !dedupe {
		return l.fetchAndSeed(ctx, typ, pageSize)
	}

	v, err, shared := l.flight.Do(key, func() (any, error) {
		return l.fetchAndSeed(ctx, typ, pageSize)
	})
	if shared {
		metrics.CacheShares.Inc()
	}
	if err != nil {
		return nil, err
	}

	return v.([]*models.Entity), nil
}

// fetchAndSeed drains every page of typ from the catalog, then caches the
// list plus per-entity resolution entries keyed by ID and by name.
func (l *RelationshipLoader) fetchAndSeed(ctx context.Context, typ models.EntityType, pageSize int) ([]*models.Entity, error) {
	var all []*models.Entity
	for offset := 0; ; offset += pageSize {
		page, err := l.catalog.ListByType(ctx, typ, pageSize, offset)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}

	metrics.CatalogLookupsTotal.WithLabelValues("list_by_type", "ok").Inc()

	l.store.Set(ListCacheKey(typ), all)

	for _, e := range all {
		l.store.Set(CacheKey(typ, e.ID), &models.ResolutionResult{
			Entity: e,
			Info:   &models.ResolutionInfo{ResolvedType: typ, ResolvedVia: models.ViaExactID},
		})

		score := 1.0
		l.store.Set(CacheKey(typ, e.Name), &models.ResolutionResult{
			Entity: e,
			Info:   &models.ResolutionInfo{MatchScore: &score, ResolvedType: typ, ResolvedVia: models.ViaExactName},
		})
	}

	l.log.WithFields(logrus.Fields{
		"entity_type": typ,
		"count":       len(all),
	}).Debug("entity type drained into cache")

	return all, nil
}
