package client

import "time"

// Entity is a catalog record as returned by the API. Virtual entities are
// placeholders minted for references that matched nothing in the catalog.
type Entity struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Name          string            `json:"name"`
	Attributes    map[string]any    `json:"attributes,omitempty"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
	Virtual       bool              `json:"virtual,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ResolutionOptions configures a resolution request.
type ResolutionOptions struct {
	Context           map[string]string `json:"context,omitempty"`
	AllowFuzzy        bool              `json:"allow_fuzzy"`
	MinimumMatchScore float64           `json:"minimum_match_score"`
	ThrowOnError      bool              `json:"throw_on_error"`
}

// ResolutionInfo explains how a resolution was produced.
type ResolutionInfo struct {
	MatchScore     *float64 `json:"match_score"`
	FuzzyMatched   bool     `json:"fuzzy_matched"`
	ContextMatched bool     `json:"context_matched"`
	VirtualEntity  bool     `json:"virtual_entity"`
	ResolvedType   string   `json:"resolved_entity_type"`
	ResolvedVia    string   `json:"resolved_via"`
}

// ResolutionResult is the outcome of a resolution request. Both fields nil
// means not found under quiet failure semantics.
type ResolutionResult struct {
	Entity *Entity         `json:"entity"`
	Info   *ResolutionInfo `json:"info"`
}

// Found reports whether the resolution produced an entity.
func (r *ResolutionResult) Found() bool {
	return r != nil && r.Entity != nil
}

// ResolutionError is a typed per-reference failure from the API.
type ResolutionError struct {
	Kind       string            `json:"error"`
	Message    string            `json:"message"`
	EntityType string            `json:"entity_type"`
	Name       string            `json:"name"`
	Context    map[string]string `json:"context,omitempty"`
}

// BatchRef is one named reference in a batch resolution request.
type BatchRef struct {
	Type     string            `json:"entity_type"`
	IDOrName string            `json:"id_or_name"`
	Context  map[string]string `json:"context,omitempty"`
}

// BatchResult is the outcome of a batch resolution. Every input key lands
// in exactly one of Resolved or Errors.
type BatchResult struct {
	Resolved map[string]*Entity          `json:"resolved"`
	Errors   map[string]*ResolutionError `json:"errors"`
}

// CreateEntityRequest is the payload for creating a catalog entity.
type CreateEntityRequest struct {
	ID            string            `json:"id,omitempty"`
	Type          string            `json:"type"`
	Name          string            `json:"name"`
	Attributes    map[string]any    `json:"attributes,omitempty"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
}

// UpdateEntityRequest is the payload for updating a catalog entity. Nil
// fields are left unchanged.
type UpdateEntityRequest struct {
	Name          *string           `json:"name,omitempty"`
	Attributes    map[string]any    `json:"attributes,omitempty"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
}

// EntityListOptions filters a List call.
type EntityListOptions struct {
	Name    string
	Context map[string]string
	Limit   int
	Offset  int
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatsResponse is the stats payload.
type StatsResponse struct {
	Entities     map[string]int `json:"entities,omitempty"`
	CacheEntries int            `json:"cache_entries"`
}

// CacheStatsResponse is the cache stats payload.
type CacheStatsResponse struct {
	Entries int `json:"entries"`
}
