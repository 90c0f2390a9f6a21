// Package metrics provides Prometheus metrics for the rules bot.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulesbot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rulesbot_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Resolution Metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulesbot_resolutions_total",
			Help: "Card lookups by outcome",
		},
		[]string{"kind"}, // "found", "not_found", "ambiguous_set", "service_unavailable", "invalid_input"
	)

	ResolutionStage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulesbot_resolution_stage_total",
			Help: "Which lookup stage produced the card",
		},
		[]string{"stage"}, // "exact", "fuzzy", "override"
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rulesbot_resolution_duration_seconds",
			Help:    "End-to-end card resolution latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Scryfall API Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulesbot_catalog_requests_total",
			Help: "Total number of Scryfall API requests",
		},
		[]string{"endpoint", "result"}, // result: "ok", "not_found", "error"
	)

	CatalogLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rulesbot_catalog_latency_seconds",
			Help:    "Scryfall API call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulesbot_catalog_cache_hits_total",
			Help: "Catalog cache hit count",
		},
		[]string{"endpoint"},
	)

	CatalogCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulesbot_catalog_cache_misses_total",
			Help: "Catalog cache miss count",
		},
		[]string{"endpoint"},
	)

	// Override Metrics
	OverridesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rulesbot_overrides_loaded",
			Help: "Number of literal name overrides in memory",
		},
	)
)
