// Package metrics exposes Prometheus counters for search, analysis, trailer
// resolution, provider calls, catalog persistence, and the HTTP API. All
// collectors register with the default registry through promauto and are
// served by the /metrics route.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_searches_total",
			Help: "Total number of catalog searches",
		},
		[]string{"scope", "refined"},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinesearch_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_analyses_total",
			Help: "Content analyses by result source",
		},
		[]string{"source"}, // "heuristic", "model", "fallback"
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_llm_requests_total",
			Help: "Language-model requests by purpose and outcome",
		},
		[]string{"purpose", "outcome"}, // outcome: "ok", "error", "invalid"
	)

	RecommendationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinesearch_recommendation_runs_total",
			Help: "Total number of recommendation ranking runs",
		},
	)

	TrailerResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_trailer_resolutions_total",
			Help: "Trailer resolutions by outcome",
		},
		[]string{"outcome"}, // "resolved", "cached", "unavailable", "failed"
	)

	TrailersPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinesearch_trailers_persisted_total",
			Help: "Trailer URLs newly written to the catalog",
		},
	)

	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_provider_requests_total",
			Help: "Video provider requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinesearch_provider_request_duration_seconds",
			Help:    "Video provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinesearch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	VideoCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_video_cache_lookups_total",
			Help: "Video details cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	CatalogFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_catalog_flushes_total",
			Help: "Catalog flushes by result",
		},
		[]string{"result"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesearch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinesearch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)

// RecordSearch records one search and its result count.
func RecordSearch(scope string, refined bool, results int) {
	SearchesTotal.WithLabelValues(scope, strconv.FormatBool(refined)).Inc()
	SearchResults.Observe(float64(results))
}

// RecordLLMRequest records a language-model call outcome.
func RecordLLMRequest(purpose, outcome string) {
	LLMRequestsTotal.WithLabelValues(purpose, outcome).Inc()
}

// RecordProviderRequest records a video provider call.
func RecordProviderRequest(endpoint string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ProviderRequestsTotal.WithLabelValues(endpoint, status).Inc()
	ProviderRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordFlush records a catalog flush attempt.
func RecordFlush(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CatalogFlushesTotal.WithLabelValues(result).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
