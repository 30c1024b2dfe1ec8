// Package store provides Postgres-backed data access for the entity
// catalog. EntityStore implements catalog.Client; mutations live in
// entity_write.go so the read path serving the resolution engine stays
// small.
package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// EntityStore owns the entities table.
type EntityStore struct {
	Base
}

// NewEntityStore creates an EntityStore.
func NewEntityStore(pool *dbpool.Pool, log *logrus.Logger) *EntityStore {
	return &EntityStore{Base: Base{Pool: pool, Log: log}}
}
