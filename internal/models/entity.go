// Package models defines data types for the sports catalog and the
// entity resolution engine.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityType identifies a domain category in the catalog.
type EntityType string

// Known entity types.
const (
	TypeLeague             EntityType = "league"
	TypeTeam               EntityType = "team"
	TypeStadium            EntityType = "stadium"
	TypeBrand              EntityType = "brand"
	TypeDivisionConference EntityType = "division_conference"
	TypeBroadcastRight     EntityType = "broadcast_right"
)

// KnownEntityTypes lists every entity type the catalog serves.
var KnownEntityTypes = []EntityType{
	TypeLeague, TypeTeam, TypeStadium, TypeBrand,
	TypeDivisionConference, TypeBroadcastRight,
}

// IsKnownEntityType reports whether t is one of the catalog's entity types.
func IsKnownEntityType(t EntityType) bool {
	for _, k := range KnownEntityTypes {
		if t == k {
			return true
		}
	}

	return false
}

// Entity is a catalog record. Instances returned by the catalog or the
// resolution engine are shared, possibly cached values and must not be
// mutated by callers.
//
// Virtual entities (placeholders for records the user has referenced but
// not yet created) are a tagged variant of the same type: Virtual is true
// and the ID is a synthetic placeholder, never a catalog primary key.
type Entity struct {
	ID            string            `json:"id"`
	Type          EntityType        `json:"type"`
	Name          string            `json:"name"`
	Attributes    map[string]any    `json:"attributes,omitempty"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
	Virtual       bool              `json:"virtual,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// EntityRef is an immutable reference to an entity. IDOrName is ambiguous
// by design: callers do not know a priori whether they hold a primary key
// or a display name; the resolution engine tries both.
type EntityRef struct {
	Type     EntityType `json:"entity_type"`
	IDOrName string     `json:"id_or_name"`
}

// CreateEntityRequest is the payload for creating a catalog entity.
type CreateEntityRequest struct {
	ID            string            `json:"id,omitempty"`
	Type          EntityType        `json:"type"`
	Name          string            `json:"name"`
	Attributes    map[string]any    `json:"attributes,omitempty"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
}

// Validate checks required fields and size limits on CreateEntityRequest.
func (r *CreateEntityRequest) Validate() error {
	if r.Type == "" {
		return ErrMissingType
	}

	if !IsKnownEntityType(r.Type) {
		return fmt.Errorf("unknown entity type %q", r.Type)
	}

	if r.Name == "" {
		return ErrMissingName
	}

	if len(r.ID) > 255 {
		return ErrFieldTooLong("id", 255)
	}

	if len(r.Name) > 1000 {
		return ErrFieldTooLong("name", 1000)
	}

	if r.Attributes != nil {
		data, err := json.Marshal(r.Attributes)
		if err != nil {
			return fmt.Errorf("invalid attributes: %w", err)
		}
		if len(data) > 65536 {
			return ErrFieldTooLong("attributes", 65536)
		}
	}

	return nil
}

// UpdateEntityRequest is the payload for updating a catalog entity.
// Nil fields are left unchanged.
type UpdateEntityRequest struct {
	Name          *string           `json:"name,omitempty"`
	Attributes    map[string]any    `json:"attributes,omitempty"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
}

// Validate checks UpdateEntityRequest fields.
func (r *UpdateEntityRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if r.Name != nil && len(*r.Name) > 1000 {
		return ErrFieldTooLong("name", 1000)
	}

	if r.Attributes != nil {
		data, err := json.Marshal(r.Attributes)
		if err != nil {
			return fmt.Errorf("invalid attributes: %w", err)
		}
		if len(data) > 65536 {
			return ErrFieldTooLong("attributes", 65536)
		}
	}

	return nil
}
