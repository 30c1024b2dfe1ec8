package resolve

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// fakeCatalog is an in-memory catalog.Client with per-method overrides
// and call counters. Without overrides it serves from the entities
// slice: FetchByID matches on type and ID, FetchByNameFilter returns all
// entities of the type (coarse filtering is the real catalog's job, and
// the scorer must cope with unrelated candidates anyway), and ListByType
// pages through the type in slice order.
type fakeCatalog struct {
	mu       sync.Mutex
	entities []*models.Entity

	fetchByIDFn   func(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error)
	fetchByNameFn func(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error)
	listFn        func(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error)

	idCalls   int
	nameCalls int
	listCalls int
}

func (f *fakeCatalog) FetchByID(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error) {
	f.mu.Lock()
	f.idCalls++
	fn := f.fetchByIDFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, typ, id)
	}

	for _, e := range f.entities {
		if e.Type == typ && e.ID == id {
			return e, nil
		}
	}

	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) FetchByNameFilter(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error) {
	f.mu.Lock()
	f.nameCalls++
	fn := f.fetchByNameFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, typ, nameFilter, contextFields)
	}

	var out []*models.Entity
	for _, e := range f.entities {
		if e.Type == typ {
			out = append(out, e)
		}
	}

	return out, nil
}

func (f *fakeCatalog) ListByType(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, typ, limit, offset)
	}

	var ofType []*models.Entity
	for _, e := range f.entities {
		if e.Type == typ {
			ofType = append(ofType, e)
		}
	}

	if offset >= len(ofType) {
		return nil, nil
	}

	end := offset + limit
	if end > len(ofType) {
		end = len(ofType)
	}

	return ofType[offset:end], nil
}

func (f *fakeCatalog) calls() (id, name, list int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.idCalls, f.nameCalls, f.listCalls
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func entity(typ models.EntityType, id, name string, ctx map[string]string) *models.Entity {
	return &models.Entity{ID: id, Type: typ, Name: name, ContextFields: ctx}
}
