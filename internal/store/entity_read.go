package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/models"
)

// FetchByID retrieves a single entity by type and primary key. Returns
// catalog.ErrNotFound when no such entity exists.
func (s *EntityStore) FetchByID(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + entityColumns + ` FROM entities WHERE type = $1 AND id = $2`

	row := s.Pool.QueryRow(ctx, query, typ, id)

	e, err := scanEntity(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s %q: %w", typ, id, err)
	}

	return e, nil
}

// FetchByNameFilter returns candidates of the given type whose name
// contains any token of the filter, case-insensitively. When no name
// overlaps at all (a typo in every token), it falls back to the full
// per-type pool so the scorer still sees the candidates; pools are
// hundreds per type at most and capped at catalog.MaxCandidates.
// contextFields, when non-empty, restricts candidates via JSONB
// containment.
func (s *EntityStore) FetchByNameFilter(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	candidates, err := s.queryCandidates(ctx, typ, strings.Fields(nameFilter), contextFields)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 && strings.TrimSpace(nameFilter) != "" {
		return s.queryCandidates(ctx, typ, nil, contextFields)
	}

	return candidates, nil
}

func (s *EntityStore) queryCandidates(ctx context.Context, typ models.EntityType, tokens []string, contextFields map[string]string) ([]*models.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE type = $1`
	args := []any{typ}

	if len(tokens) > 0 {
		conds := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			args = append(args, "%"+escapeLike(tok)+"%")
			conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
		}
		query += " AND (" + strings.Join(conds, " OR ") + ")"
	}

	if len(contextFields) > 0 {
		cf, err := json.Marshal(contextFields)
		if err != nil {
			return nil, fmt.Errorf("marshalling context filter: %w", err)
		}
		args = append(args, cf)
		query += fmt.Sprintf(" AND context_fields @> $%d", len(args))
	}

	args = append(args, catalog.MaxCandidates)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s candidates: %w", typ, err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// ListByType returns one page of entities of the given type, ordered by
// name.
func (s *EntityStore) ListByType(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error) {
	if limit <= 0 {
		limit = 50
	}

	if offset < 0 {
		offset = 0
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + entityColumns + ` FROM entities WHERE type = $1 ORDER BY name, id LIMIT $2 OFFSET $3`

	rows, err := s.Pool.Query(ctx, query, typ, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing %s entities: %w", typ, err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// CountByType returns per-type entity counts for the stats endpoint.
func (s *EntityStore) CountByType(ctx context.Context) (map[models.EntityType]int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `SELECT type, COUNT(*) FROM entities GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EntityType]int)
	for rows.Next() {
		var typ models.EntityType
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[typ] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating count rows: %w", err)
	}

	return counts, nil
}

func collectEntities(rows pgx.Rows) ([]*models.Entity, error) {
	var out []*models.Entity
	for rows.Next() {
		e, err := scanEntity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity rows: %w", err)
	}

	return out, nil
}

// escapeLike escapes LIKE metacharacters in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	return r.Replace(s)
}
