// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Ranking sessions
// - Upstream metadata calls (TMDb), retries and the circuit breaker
// - Recommendation history queries (DuckDB)
// - API endpoint latency and throughput
// - Metadata cache efficiency
// - Event publishing

var (
	// Ranking Metrics
	RankSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_sessions_total",
			Help: "Total number of ranking sessions by final status",
		},
		[]string{"status"}, // ok, no_candidates, reference_not_found, reference_details_unavailable, canceled
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_session_duration_seconds",
			Help:    "Duration of ranking sessions in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120}, // Sessions are paced and take seconds
		},
	)

	RankPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_candidate_pool_size",
			Help:    "Deduplicated candidate pool size per session",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 60, 80},
		},
	)

	RankCandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_candidates_scored_total",
			Help: "Total number of candidates scored",
		},
	)

	RankCandidatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_candidates_dropped_total",
			Help: "Total number of candidates dropped for missing details",
		},
	)

	// Upstream Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of metadata source requests",
		},
		[]string{"operation", "result"}, // result: success, not_found, error, unreachable
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of metadata source requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Total number of retried metadata source calls",
		},
		[]string{"operation", "reason"}, // reason: connectivity, error
	)

	UpstreamExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_exhausted_total",
			Help: "Total number of calls that yielded no data after all attempts",
		},
		[]string{"operation"},
	)

	UpstreamRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the shared upstream rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "details"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache read or write failures",
		},
		[]string{"cache_type", "operation"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of published events",
		},
		[]string{"topic", "result"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Total number of consumed events",
		},
		[]string{"topic", "result"},
	)
)

// RecordRankSession records the outcome of one ranking session.
func RecordRankSession(status string, duration time.Duration, poolSize, scored, dropped int) {
	RankSessions.WithLabelValues(status).Inc()
	RankDuration.Observe(duration.Seconds())
	RankPoolSize.Observe(float64(poolSize))
	RankCandidatesScored.Add(float64(scored))
	RankCandidatesDropped.Add(float64(dropped))
}

// RecordUpstreamRequest records one metadata source request.
func RecordUpstreamRequest(operation, result string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(operation, result).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordEvent records a publish or consume outcome for topic.
func RecordEvent(published bool, topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	if published {
		EventsPublished.WithLabelValues(topic, result).Inc()
		return
	}
	EventsProcessed.WithLabelValues(topic, result).Inc()
}

// Circuit breaker states as exported by CircuitBreakerState.
const (
	breakerClosed   = 0
	breakerHalfOpen = 1
	breakerOpen     = 2
)

// SetCircuitBreakerState records the current state of the named breaker.
// state is the breaker's string form: "closed", "half-open" or "open".
func SetCircuitBreakerState(name, state string) {
	var v float64
	switch strings.ToLower(state) {
	case "half-open":
		v = breakerHalfOpen
	case "open":
		v = breakerOpen
	default:
		v = breakerClosed
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}

// RecordCircuitBreakerTransition records a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	SetCircuitBreakerState(name, to)
}
