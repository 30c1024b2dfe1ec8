// Package catalog defines the capability the resolution engine needs from
// the entity catalog, and an HTTP adapter for deployments where the
// canonical catalog is a separate service. The Postgres-backed
// implementation lives in internal/store.
package catalog

import (
	"context"
	"errors"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

// ErrNotFound is returned by FetchByID when no entity has the given
// primary key. It is a normal outcome during resolution, not a failure:
// the resolver falls through to name matching.
var ErrNotFound = errors.New("entity not found")

// MaxCandidates bounds the candidate pool returned by name filtering.
// Candidate pools are hundreds per type at most; fine-grained scoring is
// the resolution engine's job, so the catalog only filters coarsely.
const MaxCandidates = 500

// Client is the catalog capability consumed by the resolution engine.
type Client interface {
	// FetchByID retrieves the entity of the given type by primary key.
	// Returns ErrNotFound when no such entity exists.
	FetchByID(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error)

	// FetchByNameFilter returns candidates of the given type whose name
	// contains the filter substring (coarse, server-side). An empty
	// slice means no candidates; that is not an error. contextFields,
	// when non-empty, restricts candidates to those carrying the given
	// relationship values.
	FetchByNameFilter(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error)

	// ListByType returns one page of entities of the given type,
	// ordered by name.
	ListByType(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error)
}
