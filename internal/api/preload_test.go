package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rosterdesk/rosterdesk/internal/api"
	"github.com/rosterdesk/rosterdesk/internal/catalog"
	"github.com/rosterdesk/rosterdesk/internal/models"
	"github.com/rosterdesk/rosterdesk/internal/resolve"
)

func TestPreloadSet_Success(t *testing.T) {
	t.Parallel()

	var gotSet resolve.EntitySet
	var gotPageSize int
	var gotDedupe bool

	loader := &mockLoader{
		preloadFn: func(_ context.Context, set resolve.EntitySet, pageSize int, dedupe bool) (map[models.EntityType][]*models.Entity, error) {
			gotSet, gotPageSize, gotDedupe = set, pageSize, dedupe

			return map[models.EntityType][]*models.Entity{
				models.TypeLeague: {{ID: "nfl", Type: models.TypeLeague, Name: "NFL"}},
			}, nil
		},
	}

	r := newTestRouter()
	h := api.NewPreloadHandler(loader, &mockCatalog{}, testLogger())
	r.POST("/preload/:set", h.PreloadSet)

	w := doRequest(r, http.MethodPost, "/preload/team_form?page_size=100", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotSet != resolve.SetTeamForm || gotPageSize != 100 || !gotDedupe {
		t.Errorf("unexpected preload args: set=%q page_size=%d dedupe=%v", gotSet, gotPageSize, gotDedupe)
	}
}

func TestPreloadSet_UnknownSet(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewPreloadHandler(&mockLoader{}, &mockCatalog{}, testLogger())
	r.POST("/preload/:set", h.PreloadSet)

	w := doRequest(r, http.MethodPost, "/preload/tournament_form", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPreloadSet_DedupeDisabled(t *testing.T) {
	t.Parallel()

	var gotDedupe bool

	loader := &mockLoader{
		preloadFn: func(_ context.Context, _ resolve.EntitySet, _ int, dedupe bool) (map[models.EntityType][]*models.Entity, error) {
			gotDedupe = dedupe

			return nil, nil
		},
	}

	r := newTestRouter()
	h := api.NewPreloadHandler(loader, &mockCatalog{}, testLogger())
	r.POST("/preload/:set", h.PreloadSet)

	w := doRequest(r, http.MethodPost, "/preload/league_form?dedupe=false", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotDedupe {
		t.Error("expected dedupe=false to pass through")
	}
}

func TestLoadRelationships_Success(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{
		fetchByIDFn: func(_ context.Context, typ models.EntityType, id string) (*models.Entity, error) {
			if id == "gone" {
				return nil, catalog.ErrNotFound
			}

			return &models.Entity{
				ID:   id,
				Type: typ,
				Name: id,
				ContextFields: map[string]string{
					"league_id": "nfl",
				},
			}, nil
		},
	}

	var gotSources []*models.Entity

	loader := &mockLoader{
		loadFn: func(_ context.Context, entities []*models.Entity, sourceType, targetFilter models.EntityType, _ bool) (map[string]map[models.EntityType][]*models.Entity, error) {
			gotSources = entities

			out := make(map[string]map[models.EntityType][]*models.Entity, len(entities))
			for _, e := range entities {
				out[e.ID] = map[models.EntityType][]*models.Entity{
					models.TypeLeague: {{ID: "nfl", Type: models.TypeLeague, Name: "NFL"}},
				}
			}

			return out, nil
		},
	}

	r := newTestRouter()
	h := api.NewPreloadHandler(loader, cat, testLogger())
	r.POST("/relationships", h.LoadRelationships)

	body := `{"source_type":"team","ids":["chargers","gone","rams"]}`
	w := doRequest(r, http.MethodPost, "/relationships", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The dangling id is skipped, not fatal.
	if len(gotSources) != 2 {
		t.Errorf("expected 2 source entities after skipping missing, got %d", len(gotSources))
	}
}

func TestLoadRelationships_Validation(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	h := api.NewPreloadHandler(&mockLoader{}, &mockCatalog{}, testLogger())
	r.POST("/relationships", h.LoadRelationships)

	tests := []struct {
		name string
		body string
	}{
		{"unknown source type", `{"source_type":"planet","ids":["x"]}`},
		{"unknown target type", `{"source_type":"team","target_type":"planet","ids":["x"]}`},
		{"empty ids", `{"source_type":"team","ids":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/relationships", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
