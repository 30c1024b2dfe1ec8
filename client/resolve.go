package client

import "context"

// ResolveService handles entity resolution calls.
type ResolveService struct {
	c *Client
}

type resolveRequest struct {
	Type     string             `json:"entity_type"`
	IDOrName string             `json:"id_or_name"`
	Options  *ResolutionOptions `json:"options,omitempty"`
}

// Resolve resolves one reference to a catalog entity. A 404 response means
// the reference matched nothing under the given options.
func (s *ResolveService) Resolve(ctx context.Context, entityType, idOrName string, opts *ResolutionOptions) (*ResolutionResult, error) {
	var res ResolutionResult
	req := resolveRequest{Type: entityType, IDOrName: idOrName, Options: opts}
	if err := s.c.post(ctx, "/api/v1/resolve", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type batchRequest struct {
	References      map[string]BatchRef `json:"references"`
	ThrowOnAnyError bool                `json:"throw_on_any_error"`
}

// ResolveBatch resolves a named map of references concurrently. A 207
// response (some references failed) still decodes into the returned
// BatchResult; check its Errors map.
func (s *ResolveService) ResolveBatch(ctx context.Context, refs map[string]BatchRef, throwOnAnyError bool) (*BatchResult, error) {
	var res BatchResult
	req := batchRequest{References: refs, ThrowOnAnyError: throwOnAnyError}
	if err := s.c.post(ctx, "/api/v1/resolve/batch", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
