package api_test

import (
	"context"

	"github.com/rosterdesk/rosterdesk/internal/models"
	"github.com/rosterdesk/rosterdesk/internal/resolve"
)

// mockCatalog implements api.CatalogReader and api.CatalogWriter for testing.
type mockCatalog struct {
	fetchByIDFn   func(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error)
	fetchByNameFn func(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error)
	listFn        func(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error)
	createFn      func(ctx context.Context, req *models.CreateEntityRequest) (*models.Entity, error)
	updateFn      func(ctx context.Context, typ models.EntityType, id string, req *models.UpdateEntityRequest) (*models.Entity, error)
	deleteFn      func(ctx context.Context, typ models.EntityType, id string) error
	countFn       func(ctx context.Context) (map[models.EntityType]int, error)
}

func (m *mockCatalog) FetchByID(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error) {
	return m.fetchByIDFn(ctx, typ, id)
}

func (m *mockCatalog) FetchByNameFilter(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error) {
	return m.fetchByNameFn(ctx, typ, nameFilter, contextFields)
}

func (m *mockCatalog) ListByType(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error) {
	return m.listFn(ctx, typ, limit, offset)
}

func (m *mockCatalog) CreateEntity(ctx context.Context, req *models.CreateEntityRequest) (*models.Entity, error) {
	return m.createFn(ctx, req)
}

func (m *mockCatalog) UpdateEntity(ctx context.Context, typ models.EntityType, id string, req *models.UpdateEntityRequest) (*models.Entity, error) {
	return m.updateFn(ctx, typ, id, req)
}

func (m *mockCatalog) DeleteEntity(ctx context.Context, typ models.EntityType, id string) error {
	return m.deleteFn(ctx, typ, id)
}

func (m *mockCatalog) CountByType(ctx context.Context) (map[models.EntityType]int, error) {
	return m.countFn(ctx)
}

// mockResolver implements api.ResolverService for testing.
type mockResolver struct {
	resolveFn    func(ctx context.Context, typ models.EntityType, idOrName string, opts *models.ResolutionOptions) (*models.ResolutionResult, error)
	cleared      []string
	clearedLists []models.EntityType
	clearAll     int
}

func (m *mockResolver) Resolve(ctx context.Context, typ models.EntityType, idOrName string, opts *models.ResolutionOptions) (*models.ResolutionResult, error) {
	return m.resolveFn(ctx, typ, idOrName, opts)
}

func (m *mockResolver) ClearCacheEntry(typ models.EntityType, idOrName string) {
	m.cleared = append(m.cleared, string(typ)+"/"+idOrName)
}

func (m *mockResolver) ClearTypeList(typ models.EntityType) {
	m.clearedLists = append(m.clearedLists, typ)
}

func (m *mockResolver) ClearAllCache() { m.clearAll++ }

// mockBatch implements api.BatchService for testing.
type mockBatch struct {
	resolveFn func(ctx context.Context, refs map[string]models.BatchRef, throwOnAnyError bool) (*models.BatchResult, error)
}

func (m *mockBatch) ResolveReferences(ctx context.Context, refs map[string]models.BatchRef, throwOnAnyError bool) (*models.BatchResult, error) {
	return m.resolveFn(ctx, refs, throwOnAnyError)
}

// mockLoader implements api.PreloadService for testing.
type mockLoader struct {
	preloadFn func(ctx context.Context, set resolve.EntitySet, pageSize int, dedupe bool) (map[models.EntityType][]*models.Entity, error)
	loadFn    func(ctx context.Context, entities []*models.Entity, sourceType, targetFilter models.EntityType, dedupe bool) (map[string]map[models.EntityType][]*models.Entity, error)
}

func (m *mockLoader) PreloadEntitySet(ctx context.Context, set resolve.EntitySet, pageSize int, dedupe bool) (map[models.EntityType][]*models.Entity, error) {
	return m.preloadFn(ctx, set, pageSize, dedupe)
}

func (m *mockLoader) LoadRelationshipsForMultiple(ctx context.Context, entities []*models.Entity, sourceType, targetFilter models.EntityType, dedupe bool) (map[string]map[models.EntityType][]*models.Entity, error) {
	return m.loadFn(ctx, entities, sourceType, targetFilter, dedupe)
}
