package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// CreateEntity inserts a new catalog entity. A missing ID gets a
// generated UUID. Returns the stored entity with its timestamps.
func (s *EntityStore) CreateEntity(ctx context.Context, req *models.CreateEntityRequest) (*models.Entity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	attrs, contextFields, err := marshalJSONFields(req.Attributes, req.ContextFields)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO entities (type, id, name, attributes, context_fields)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + entityColumns

	row := s.Pool.QueryRow(ctx, query, req.Type, id, req.Name, attrs, contextFields)

	e, err := scanEntity(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("creating %s %q: %w", req.Type, req.Name, err)
	}

	s.Log.WithFields(logrus.Fields{
		"entity_type": e.Type,
		"entity_id":   e.ID,
	}).Info("entity created")

	return e, nil
}

// UpdateEntity applies a partial update. Nil request fields are left
// unchanged. Returns catalog.ErrNotFound when no such entity exists.
func (s *EntityStore) UpdateEntity(ctx context.Context, typ models.EntityType, id string, req *models.UpdateEntityRequest) (*models.Entity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := "updated_at = now()"
	args := []any{typ, id}

	if req.Name != nil {
		args = append(args, *req.Name)
		set += fmt.Sprintf(", name = $%d", len(args))
	}

	if req.Attributes != nil {
		attrs, err := json.Marshal(req.Attributes)
		if err != nil {
			return nil, fmt.Errorf("marshalling attributes: %w", err)
		}
		args = append(args, attrs)
		set += fmt.Sprintf(", attributes = $%d", len(args))
	}

	if req.ContextFields != nil {
		cf, err := json.Marshal(req.ContextFields)
		if err != nil {
			return nil, fmt.Errorf("marshalling context fields: %w", err)
		}
		args = append(args, cf)
		set += fmt.Sprintf(", context_fields = $%d", len(args))
	}

	query := `UPDATE entities SET ` + set + ` WHERE type = $1 AND id = $2 RETURNING ` + entityColumns

	row := s.Pool.QueryRow(ctx, query, args...)

	e, err := scanEntity(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating %s %q: %w", typ, id, err)
	}

	s.Log.WithFields(logrus.Fields{
		"entity_type": typ,
		"entity_id":   id,
	}).Info("entity updated")

	return e, nil
}

// DeleteEntity removes an entity. Returns catalog.ErrNotFound when no
// such entity exists.
func (s *EntityStore) DeleteEntity(ctx context.Context, typ models.EntityType, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, `DELETE FROM entities WHERE type = $1 AND id = $2`, typ, id)
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", typ, id, err)
	}

	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}

	s.Log.WithFields(logrus.Fields{
		"entity_type": typ,
		"entity_id":   id,
	}).Info("entity deleted")

	return nil
}

func marshalJSONFields(attributes map[string]any, contextFields map[string]string) ([]byte, []byte, error) {
	if attributes == nil {
		attributes = map[string]any{}
	}
	if contextFields == nil {
		contextFields = map[string]string{}
	}

	attrs, err := json.Marshal(attributes)
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling attributes: %w", err)
	}

	cf, err := json.Marshal(contextFields)
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling context fields: %w", err)
	}

	return attrs, cf, nil
}
