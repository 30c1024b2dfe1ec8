package client

import (
	"context"
	"net/url"
)

// CacheService handles server-side resolution cache management.
type CacheService struct {
	c *Client
}

// Stats returns the cache entry count.
func (s *CacheService) Stats(ctx context.Context) (*CacheStatsResponse, error) {
	var resp CacheStatsResponse
	if err := s.c.get(ctx, "/api/v1/cache/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Clear drops every cached resolution.
func (s *CacheService) Clear(ctx context.Context) error {
	return s.c.del(ctx, "/api/v1/cache", nil, nil)
}

// ClearEntry drops the cached resolution for one raw reference. The key is
// matched case-sensitively, exactly as it was resolved.
func (s *CacheService) ClearEntry(ctx context.Context, entityType, key string) error {
	path := "/api/v1/cache/" + url.PathEscape(entityType) + "/" + url.PathEscape(key)
	return s.c.del(ctx, path, nil, nil)
}
