package store

import (
	"encoding/json"
	"fmt"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

// entityColumns lists the columns selected for entity queries.
const entityColumns = `type, id, name, attributes, context_fields, created_at, updated_at`

// scanEntity scans a single row into a models.Entity.
func scanEntity(scan func(dest ...any) error) (*models.Entity, error) {
	var e models.Entity
	var attrs, contextFields []byte

	err := scan(
		&e.Type,
		&e.ID,
		&e.Name,
		&attrs,
		&contextFields,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(attrs, &e.Attributes); err != nil {
		return nil, fmt.Errorf("unmarshalling entity attributes: %w", err)
	}

	if err := json.Unmarshal(contextFields, &e.ContextFields); err != nil {
		return nil, fmt.Errorf("unmarshalling entity context fields: %w", err)
	}

	return &e, nil
}
