package resolve

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/cache"
	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/metrics"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// DefaultLookupTimeout bounds a single catalog call attempt.
const DefaultLookupTimeout = 3 * time.Second

// CacheKey returns the resolution cache key for a reference. Keys are
// case-sensitive on the raw input: "NFL" and "nfl" are distinct entries
// even when they resolve to the same entity.
func CacheKey(typ models.EntityType, idOrName string) string {
	return "resolve_entity_" + string(typ) + "_" + idOrName
}

// ListCacheKey returns the cache key for a preloaded per-type entity list.
func ListCacheKey(typ models.EntityType) string {
	return "entity_list_" + string(typ)
}

// Config carries the resolver's tunables. The zero value selects
// defaults for every field.
type Config struct {
	// LookupTimeout bounds each catalog call attempt (not the whole
	// resolution). Zero selects DefaultLookupTimeout.
	LookupTimeout time.Duration

	// VirtualTypes lists entity types eligible for virtual-placeholder
	// fallback. Nil selects the defaults (brand, stadium); an explicit
	// empty slice disables the fallback entirely.
	VirtualTypes []models.EntityType

	// CacheTTL applies to resolution entries written by the resolver.
	// Zero pins entries for the process lifetime.
	CacheTTL time.Duration
}

// Resolver resolves entity references through the staged pipeline:
// cache, exact ID, name matching with optional context disambiguation,
// then virtual fallback for the types that allow it.
type Resolver struct {
	catalog  catalog.Client
	store    *cache.Cache
	scorer   *Scorer
	log      *logrus.Logger
	timeout  time.Duration
	cacheTTL time.Duration
	virtual  map[models.EntityType]bool
}

// NewResolver creates a Resolver backed by the given catalog and cache.
func NewResolver(cat catalog.Client, store *cache.Cache, log *logrus.Logger, cfg Config) *Resolver {
	timeout := cfg.LookupTimeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	types := cfg.VirtualTypes
	if types == nil {
		types = []models.EntityType{models.TypeBrand, models.TypeStadium}
	}

	virtual := make(map[models.EntityType]bool, len(types))
	for _, t := range types {
		virtual[t] = true
	}

	return &Resolver{
		catalog:  cat,
		store:    store,
		scorer:   NewScorer(),
		log:      log,
		timeout:  timeout,
		cacheTTL: cfg.CacheTTL,
		virtual:  virtual,
	}
}

// Scorer exposes the resolver's scorer for callers that want to explain
// scores without running a resolution.
func (r *Resolver) Scorer() *Scorer { return r.scorer }

// Resolve resolves a single reference. opts may be nil, selecting
// DefaultResolutionOptions. A blank reference returns an empty result
// without touching the catalog or the cache. With ThrowOnError unset,
// failures return an empty result and a nil error.
func (r *Resolver) Resolve(ctx context.Context, typ models.EntityType, idOrName string, opts *models.ResolutionOptions) (*models.ResolutionResult, error) {
	o := models.DefaultResolutionOptions()
	if opts != nil {
		o = *opts
	}

	if strings.TrimSpace(idOrName) == "" {
		return &models.ResolutionResult{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.ResolutionDuration.WithLabelValues(string(typ)).Observe(time.Since(start).Seconds())
	}()

	key := CacheKey(typ, idOrName)
	if v, ok := r.store.Get(key); ok {
		if res, ok := v.(*models.ResolutionResult); ok {
			return res, nil
		}
	}

	ent, err := r.fetchByID(ctx, typ, idOrName)
	switch {
	case err == nil:
		res := &models.ResolutionResult{
			Entity: ent,
			Info:   &models.ResolutionInfo{ResolvedType: typ, ResolvedVia: models.ViaExactID},
		}
		r.commit(key, typ, res)

		return res, nil
	case !errors.Is(err, catalog.ErrNotFound):
		return r.fail(models.ErrKindLookupFailed, typ, idOrName, &o, err)
	}

	// Candidates are fetched without the context filter: context
	// deprioritizes inconsistent candidates during disambiguation but
	// must never drop them from the pool.
	candidates, err := r.fetchByName(ctx, typ, idOrName)
	if err != nil {
		return r.fail(models.ErrKindLookupFailed, typ, idOrName, &o, err)
	}

	if res := r.pickByName(typ, idOrName, candidates, &o); res != nil {
		r.commit(key, typ, res)

		return res, nil
	}

	if r.virtual[typ] {
		res := &models.ResolutionResult{
			Entity: &models.Entity{
				ID:      "virtual_" + uuid.NewString(),
				Type:    typ,
				Name:    idOrName,
				Virtual: true,
			},
			Info: &models.ResolutionInfo{
				VirtualEntity: true,
				ResolvedType:  typ,
				ResolvedVia:   models.ViaVirtual,
			},
		}
		r.commit(key, typ, res)

		r.log.WithFields(logrus.Fields{
			"entity_type": typ,
			"name":        idOrName,
			"virtual_id":  res.Entity.ID,
		}).Info("created virtual entity placeholder")

		return res, nil
	}

	return r.fail(models.ErrKindNotFound, typ, idOrName, &o, nil)
}

// ClearCacheEntry invalidates the cached resolution for one reference.
// Call after the underlying entity is mutated or deleted.
func (r *Resolver) ClearCacheEntry(typ models.EntityType, idOrName string) {
	r.store.Delete(CacheKey(typ, idOrName))
}

// ClearTypeList invalidates the preloaded list for a type. Preload pins
// the list for the session, so mutations must drop it or the stale
// roster keeps serving until the next restart.
func (r *Resolver) ClearTypeList(typ models.EntityType) {
	r.store.Delete(ListCacheKey(typ))
}

// ClearAllCache drops every cached resolution and preloaded list.
func (r *Resolver) ClearAllCache() {
	r.store.Clear()
}

// pickByName scores candidates against the query and selects the best
// eligible one, applying context disambiguation when context is present.
// Returns nil when no candidate is acceptable under the options.
func (r *Resolver) pickByName(typ models.EntityType, query string, candidates []*models.Entity, o *models.ResolutionOptions) *models.ResolutionResult {
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoredCandidate{Entity: c, Score: r.scorer.Score(typ, query, c.Name)})
	}

	// Stable keeps catalog order on ties so results do not flap between
	// identical requests.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	best := scored[0].Score
	exact := best >= 1.0

	if !exact && (!o.AllowFuzzy || best < o.MinimumMatchScore) {
		r.log.WithFields(logrus.Fields{
			"entity_type": typ,
			"query":       query,
			"best_score":  best,
			"candidates":  len(scored),
		}).Debug("no candidate above threshold")

		return nil
	}

	// Exact matches compete only with other exact matches; below that,
	// everything above the threshold stays in play for disambiguation.
	floor := o.MinimumMatchScore
	if exact {
		floor = 1.0
	}

	eligible := scored[:0:0]
	for _, c := range scored {
		if c.Score >= floor {
			eligible = append(eligible, c)
		}
	}

	ordered := Disambiguate(eligible, o.Context)
	pick := ordered[0]
	score := pick.Score

	info := &models.ResolutionInfo{
		MatchScore:   &score,
		ResolvedType: typ,
	}

	// context_match only when context actually changed the outcome: the
	// pick is context-consistent and is not the candidate scoring alone
	// would have chosen.
	switch {
	case MatchesContext(pick.Entity, o.Context) && pick.Entity != eligible[0].Entity:
		info.ContextMatched = true
		info.ResolvedVia = models.ViaContext
	case exact:
		info.ResolvedVia = models.ViaExactName
	default:
		info.FuzzyMatched = true
		info.ResolvedVia = models.ViaFuzzyName
	}

	return &models.ResolutionResult{Entity: pick.Entity, Info: info}
}

// commit caches a successful resolution and records the outcome metric.
func (r *Resolver) commit(key string, typ models.EntityType, res *models.ResolutionResult) {
	r.store.SetWithTTL(key, res, r.cacheTTL)
	metrics.ResolutionsTotal.WithLabelValues(string(typ), string(res.Info.ResolvedVia)).Inc()
}

// fail converts a resolution failure into the caller-selected shape:
// a typed error under ThrowOnError, otherwise a logged empty result.
func (r *Resolver) fail(kind models.ErrorKind, typ models.EntityType, name string, o *models.ResolutionOptions, cause error) (*models.ResolutionResult, error) {
	rerr := models.NewResolutionError(kind, typ, name, o.Context, cause)
	metrics.ErrorsTotal.WithLabelValues(string(kind)).Inc()

	if o.ThrowOnError {
		return nil, rerr
	}

	entry := r.log.WithFields(logrus.Fields{
		"entity_type": typ,
		"name":        name,
		"kind":        kind,
	})
	if kind == models.ErrKindLookupFailed {
		entry.WithError(cause).Warn("resolution failed")
	} else {
		entry.Debug("entity not found")
	}

	return &models.ResolutionResult{}, nil
}

// fetchByID looks up an entity by primary key with one retry.
func (r *Resolver) fetchByID(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error) {
	var ent *models.Entity

	err := r.withRetry(ctx, func(ctx context.Context) error {
		var err error
		ent, err = r.catalog.FetchByID(ctx, typ, id)

		return err
	})

	metrics.CatalogLookupsTotal.WithLabelValues("fetch_by_id", lookupOutcome(err)).Inc()

	return ent, err
}

// fetchByName retrieves name-filtered candidates with one retry.
func (r *Resolver) fetchByName(ctx context.Context, typ models.EntityType, name string) ([]*models.Entity, error) {
	var candidates []*models.Entity

	err := r.withRetry(ctx, func(ctx context.Context) error {
		var err error
		candidates, err = r.catalog.FetchByNameFilter(ctx, typ, name, nil)

		return err
	})

	metrics.CatalogLookupsTotal.WithLabelValues("fetch_by_name", lookupOutcome(err)).Inc()

	return candidates, err
}

// withRetry runs fn with a per-attempt timeout and retries exactly once
// on transient failure. Not-found is a definitive answer, never retried,
// and a cancelled parent context stops immediately.
func (r *Resolver) withRetry(ctx context.Context, fn func(context.Context) error) error {
	err := r.attempt(ctx, fn)
	if err == nil || errors.Is(err, catalog.ErrNotFound) || ctx.Err() != nil {
		return err
	}

	return r.attempt(ctx, fn)
}

func (r *Resolver) attempt(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return fn(ctx)
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, catalog.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
