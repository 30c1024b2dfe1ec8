package client

import (
	"context"
	"net/url"
	"strconv"
)

// PreloadService handles entity-set preloading and relationship hydration.
type PreloadService struct {
	c *Client
}

// preloadResponse wraps the preload response.
type preloadResponse struct {
	Set      string               `json:"set"`
	Entities map[string][]*Entity `json:"entities"`
}

// PreloadSet warms the server-side resolution cache with every entity type
// a form needs, keyed by entity type.
func (s *PreloadService) PreloadSet(ctx context.Context, set string, pageSize int, dedupe bool) (map[string][]*Entity, error) {
	params := url.Values{}
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}
	if !dedupe {
		params.Set("dedupe", "false")
	}

	path := "/api/v1/preload/" + url.PathEscape(set)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp preloadResponse
	if err := s.c.post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

type relationshipsRequest struct {
	SourceType string   `json:"source_type"`
	IDs        []string `json:"ids"`
	TargetType string   `json:"target_type,omitempty"`
	Dedupe     *bool    `json:"dedupe,omitempty"`
}

// relationshipsResponse wraps the relationships response.
type relationshipsResponse struct {
	Relationships map[string]map[string][]*Entity `json:"relationships"`
}

// LoadRelationships hydrates the entities referenced by the context fields
// of the named source entities, keyed by source ID and related entity type.
// targetType of "" loads every related type.
func (s *PreloadService) LoadRelationships(ctx context.Context, sourceType string, ids []string, targetType string, dedupe bool) (map[string]map[string][]*Entity, error) {
	req := relationshipsRequest{SourceType: sourceType, IDs: ids, TargetType: targetType}
	if !dedupe {
		req.Dedupe = &dedupe
	}

	var resp relationshipsResponse
	if err := s.c.post(ctx, "/api/v1/relationships", req, &resp); err != nil {
		return nil, err
	}
	return resp.Relationships, nil
}
