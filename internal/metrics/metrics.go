// Package metrics defines Prometheus metrics for rosterdesk.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rosterdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosterdesk_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosterdesk_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosterdesk_resolutions_total",
			Help: "Entity resolutions by type and strategy",
		},
		[]string{"entity_type", "resolved_via"},
	)

	ResolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rosterdesk_resolution_duration_seconds",
			Help:    "Entity resolution duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"entity_type"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rosterdesk_cache_hits_total",
			Help: "Resolution cache hits",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rosterdesk_cache_misses_total",
			Help: "Resolution cache misses",
		},
	)

	CacheShares = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rosterdesk_cache_shares_total",
			Help: "Duplicate in-flight loads coalesced into one request",
		},
	)

	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rosterdesk_cache_entries",
			Help: "Current resolution cache entry count",
		},
	)

	CatalogLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rosterdesk_catalog_lookups_total",
			Help: "Catalog lookups by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ResolutionsTotal, ResolutionDuration,
		CacheHits, CacheMisses, CacheShares, CacheEntries,
		CatalogLookupsTotal,
	)
}
