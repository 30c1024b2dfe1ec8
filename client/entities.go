package client

import (
	"context"
	"net/url"
	"strconv"
)

// EntityService handles entity catalog CRUD operations.
type EntityService struct {
	c *Client
}

// entityListResponse wraps the entity list response.
type entityListResponse struct {
	Entities []Entity `json:"entities"`
}

// List returns entities of a type with optional name/context filtering and
// pagination.
func (s *EntityService) List(ctx context.Context, entityType string, opts *EntityListOptions) ([]Entity, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Name != "" {
			params.Set("name", opts.Name)
		}
		for field, value := range opts.Context {
			params.Set("context."+field, value)
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}
	var resp entityListResponse
	if err := s.c.get(ctx, "/api/v1/entities/"+url.PathEscape(entityType), params, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

// Get returns a single entity by type and ID.
func (s *EntityService) Get(ctx context.Context, entityType, id string) (*Entity, error) {
	var e Entity
	path := "/api/v1/entities/" + url.PathEscape(entityType) + "/" + url.PathEscape(id)
	if err := s.c.get(ctx, path, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create creates a new catalog entity.
func (s *EntityService) Create(ctx context.Context, req *CreateEntityRequest) (*Entity, error) {
	var e Entity
	if err := s.c.post(ctx, "/api/v1/entities", req, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update updates an existing catalog entity.
func (s *EntityService) Update(ctx context.Context, entityType, id string, req *UpdateEntityRequest) (*Entity, error) {
	var e Entity
	path := "/api/v1/entities/" + url.PathEscape(entityType) + "/" + url.PathEscape(id)
	if err := s.c.put(ctx, path, req, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes a catalog entity.
func (s *EntityService) Delete(ctx context.Context, entityType, id string) error {
	path := "/api/v1/entities/" + url.PathEscape(entityType) + "/" + url.PathEscape(id)
	return s.c.del(ctx, path, nil, nil)
}
