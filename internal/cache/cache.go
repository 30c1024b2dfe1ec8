// Package cache provides the process-wide resolution cache.
//
// The cache is a plain key/value store with per-entry TTL and explicit
// invalidation. Writers always replace whole entries, never mutate cached
// values in place, so concurrent writers to the same key are safe without
// caller-side locking: last write wins and readers always see a complete
// entry. The cache does NOT coalesce concurrent misses for the same key —
// request coalescing, where it exists, lives in the resolution engine's
// preloader. Duplicate concurrent misses may therefore cause duplicate
// catalog calls; this is an accepted trade-off, not a hidden guarantee.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rosterdesk/rosterdesk/internal/metrics"
)

// entry is one cached value with its storage timestamp and optional TTL.
type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration // 0 = pinned for the session
}

// expired reports whether the entry's TTL has elapsed.
func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.storedAt) >= e.ttl
}

// Cache is a process-wide key/value store for resolution results and raw
// catalog lookups. The zero value is not usable; call New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		metrics.CacheMisses.Inc()

		return nil, false
	}

	metrics.CacheHits.Inc()

	return e.value, true
}

// StoredAt returns when the entry for key was written, if present.
func (c *Cache) StoredAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return time.Time{}, false
	}

	return e.storedAt, true
}

// Set stores value under key for the lifetime of the session (no TTL).
// An existing entry is replaced wholesale.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key with the given TTL. ttl of 0 pins the
// entry until explicit invalidation.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: time.Now(), ttl: ttl}
	metrics.CacheEntries.Set(float64(len(c.entries)))
	c.mu.Unlock()
}

// Delete removes the entry for key, if any.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	metrics.CacheEntries.Set(float64(len(c.entries)))
	c.mu.Unlock()
}

// Clear removes every entry. Used on logout and manual refresh.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	metrics.CacheEntries.Set(0)
	c.mu.Unlock()
}

// Len returns the current entry count, including not-yet-evicted expired
// entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// evict removes expired entries.
func (c *Cache) evict() {
	now := time.Now()

	c.mu.Lock()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
	metrics.CacheEntries.Set(float64(len(c.entries)))
	c.mu.Unlock()
}

// StartEviction periodically removes expired entries until ctx is
// cancelled. Call in a goroutine; entries with no TTL are never touched.
func (c *Cache) StartEviction(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = time.Minute
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evict()
		}
	}
}
