package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

// DefaultBatchConcurrency bounds concurrent resolutions within one batch.
const DefaultBatchConcurrency = 8

// BatchResolver resolves a map of named references concurrently. Every
// reference settles independently: one failure never aborts its siblings,
// and each input key ends up in exactly one of the result maps.
type BatchResolver struct {
	resolver    *Resolver
	log         *logrus.Logger
	concurrency int
}

// NewBatchResolver creates a BatchResolver. concurrency of 0 or less
// selects DefaultBatchConcurrency.
func NewBatchResolver(r *Resolver, log *logrus.Logger, concurrency int) *BatchResolver {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchResolver{resolver: r, log: log, concurrency: concurrency}
}

// ResolveReferences resolves all refs concurrently and returns the
// partitioned outcome. With throwOnAnyError set, a *models.BatchError
// aggregating every failure is returned alongside the partial result,
// but only after all references have settled.
func (b *BatchResolver) ResolveReferences(ctx context.Context, refs map[string]models.BatchRef, throwOnAnyError bool) (result *models.BatchResult, err error) {
	result = &models.BatchResult{
		Resolved: make(map[string]*models.Entity),
		Errors:   make(map[string]*models.ResolutionError),
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}

		b.log.WithField("panic", p).Error("batch resolution dispatch panicked")

		result = &models.BatchResult{
			Resolved: make(map[string]*models.Entity),
			Errors: map[string]*models.ResolutionError{
				models.GeneralErrorKey: models.NewResolutionError(
					models.ErrKindLookupFailed, "", "", nil,
					fmt.Errorf("batch dispatch panicked: %v", p)),
			},
		}

		err = nil
		if throwOnAnyError {
			err = &models.BatchError{Errors: result.Errors}
		}
	}()

	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)

	for name, ref := range refs {
		g.Go(func() error {
			defer func() {
				p := recover()
				if p == nil {
					return
				}

				b.log.WithFields(logrus.Fields{
					"panic": p,
					"ref":   name,
				}).Error("batch resolution worker panicked")

				// The panicked reference still settles under its own key;
				// _general is reserved for dispatch-level failure.
				mu.Lock()
				result.Errors[name] = models.NewResolutionError(
					models.ErrKindLookupFailed, ref.Type, ref.IDOrName, ref.Context,
					fmt.Errorf("resolution panicked: %v", p))
				mu.Unlock()
			}()

			// Per-reference failures must land in the error map, so
			// resolution always runs in throwing mode regardless of how
			// the caller wants the aggregate reported.
			opts := models.DefaultResolutionOptions()
			opts.Context = ref.Context
			opts.ThrowOnError = true

			res, rerr := b.resolver.Resolve(ctx, ref.Type, ref.IDOrName, &opts)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case rerr != nil:
				var typed *models.ResolutionError
				if !errors.As(rerr, &typed) {
					typed = models.NewResolutionError(models.ErrKindLookupFailed, ref.Type, ref.IDOrName, ref.Context, rerr)
				}
				result.Errors[name] = typed
			case !res.Found():
				// Blank references short-circuit before the pipeline;
				// report them as not found rather than dropping the key.
				result.Errors[name] = models.NewResolutionError(models.ErrKindNotFound, ref.Type, ref.IDOrName, ref.Context, nil)
			default:
				result.Resolved[name] = res.Entity
			}

			return nil
		})
	}

	// Workers never return errors; Wait is a pure barrier here.
	_ = g.Wait()

	if len(result.Errors) > 0 {
		b.log.WithFields(logrus.Fields{
			"resolved": len(result.Resolved),
			"failed":   len(result.Errors),
		}).Warn("batch resolution completed with failures")

		if throwOnAnyError {
			return result, &models.BatchError{Errors: result.Errors}
		}
	}

	return result, nil
}
