package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/rosterdesk/rosterdesk/internal/models"
)

// RemoteConfig tunes the HTTP catalog client. The zero value selects
// defaults for every field.
type RemoteConfig struct {
	// Token is sent as a bearer token when non-empty.
	Token string

	// Timeout bounds a single HTTP request. Zero selects 10s.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls so a burst of cache
	// misses cannot hammer the upstream catalog. Zero selects 50.
	RequestsPerSecond float64
}

// Remote is an HTTP Client implementation for deployments where the
// canonical catalog is a separate service. Calls are rate-limited and
// guarded by a circuit breaker so a struggling upstream fails fast
// instead of stacking up timeouts.
type Remote struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

// NewRemote creates a Remote catalog client for the given base URL
// (e.g. "https://catalog.internal:8443").
func NewRemote(baseURL string, log *logrus.Logger, cfg RemoteConfig) *Remote {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 50
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A 404 is a definitive catalog answer, not an upstream
			// failure.
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("catalog circuit breaker state changed")
		},
	})

	return &Remote{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)),
		breaker:    breaker,
		log:        log,
	}
}

// FetchByID implements Client.
func (r *Remote) FetchByID(ctx context.Context, typ models.EntityType, id string) (*models.Entity, error) {
	path := fmt.Sprintf("/api/v1/entities/%s/%s", url.PathEscape(string(typ)), url.PathEscape(id))

	var e models.Entity
	if err := r.get(ctx, path, nil, &e); err != nil {
		return nil, err
	}

	return &e, nil
}

// FetchByNameFilter implements Client.
func (r *Remote) FetchByNameFilter(ctx context.Context, typ models.EntityType, nameFilter string, contextFields map[string]string) ([]*models.Entity, error) {
	q := url.Values{}
	if nameFilter != "" {
		q.Set("name", nameFilter)
	}
	for k, v := range contextFields {
		q.Set("context."+k, v)
	}

	var out struct {
		Entities []*models.Entity `json:"entities"`
	}

	path := fmt.Sprintf("/api/v1/entities/%s", url.PathEscape(string(typ)))
	if err := r.get(ctx, path, q, &out); err != nil {
		return nil, err
	}

	return out.Entities, nil
}

// ListByType implements Client.
func (r *Remote) ListByType(ctx context.Context, typ models.EntityType, limit, offset int) ([]*models.Entity, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out struct {
		Entities []*models.Entity `json:"entities"`
	}

	path := fmt.Sprintf("/api/v1/entities/%s", url.PathEscape(string(typ)))
	if err := r.get(ctx, path, q, &out); err != nil {
		return nil, err
	}

	return out.Entities, nil
}

// get executes a GET request through the limiter and breaker and decodes
// the JSON response. A 404 maps to ErrNotFound and does not count as a
// breaker failure.
func (r *Remote) get(ctx context.Context, path string, query url.Values, result any) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, err := r.breaker.Execute(func() (any, error) {
		u := r.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if r.token != "" {
			req.Header.Set("Authorization", "Bearer "+r.token)
		}

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("catalog returned %d: %s", resp.StatusCode, truncate(body, 200))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}

		return nil, nil
	})

	return err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}

	return string(b[:n]) + "..."
}
