package api

import (
	"context"

	"github.com/rosterdesk/rosterdesk/internal/models"
	"github.com/rosterdesk/rosterdesk/internal/resolve"
)

// CatalogReader defines the read operations used by EntityHandler.
type CatalogReader interface {
	FetchByID(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error)
	FetchByNameFilter(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error)
	ListByType(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error)
}

// CatalogWriter defines the mutation operations used by EntityHandler.
// Only available when the catalog is Postgres-backed; in remote-catalog
// deployments the mutation routes are not registered.
type CatalogWriter interface {
	CreateEntity(ctx context.Context, req *models.CreateEntityRequest) (*models.Entity, error)
	UpdateEntity(ctx context.Context, typ models.EntityType, id string, req *models.UpdateEntityRequest) (*models.Entity, error)
	DeleteEntity(ctx context.Context, typ models.EntityType, id string) error
	CountByType(ctx context.Context) (map[models.EntityType]int, error)
}

// ResolverService defines the single-reference operations used by
// ResolveHandler.
type ResolverService interface {
	Resolve(ctx context.Context, typ models.EntityType, idOrName string, opts *models.ResolutionOptions) (*models.ResolutionResult, error)
	ClearCacheEntry(typ models.EntityType, idOrName string)
	ClearTypeList(typ models.EntityType)
	ClearAllCache()
}

// BatchService defines the batch operation used by ResolveHandler.
type BatchService interface {
	ResolveReferences(ctx context.Context, refs map[string]models.BatchRef, throwOnAnyError bool) (*models.BatchResult, error)
}

// PreloadService defines the preload operations used by PreloadHandler.
type PreloadService interface {
	PreloadEntitySet(ctx context.Context, set resolve.EntitySet, pageSize int, dedupe bool) (map[models.EntityType][]*models.Entity, error)
	LoadRelationshipsForMultiple(ctx context.Context, entities []*models.Entity, sourceType, targetFilter models.EntityType, dedupe bool) (map[string]map[models.EntityType][]*models.Entity, error)
}
