// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed by the API server at /metrics:

	curl http://localhost:5000/metrics

# Available Metrics

Ranking:
  - rank_sessions_total: Sessions by final status (counter)
    Labels: status
  - rank_session_duration_seconds: End-to-end session latency (histogram)
  - rank_candidate_pool_size: Deduplicated pool size (histogram)
  - rank_candidates_scored_total, rank_candidates_dropped_total (counters)

Upstream (TMDb):
  - upstream_requests_total: Requests by operation and result (counter)
  - upstream_request_duration_seconds: Request latency (histogram)
  - upstream_retries_total: Retries by operation and reason (counter)
  - upstream_retries_exhausted_total: Calls that ended without data (counter)
  - upstream_rate_limit_wait_seconds: Time blocked on the shared limiter (histogram)
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total

History (DuckDB):
  - duckdb_query_duration_seconds, duckdb_query_errors_total

HTTP:
  - api_requests_total, api_request_duration_seconds, api_active_requests,
    api_rate_limit_hits_total

Cache and events:
  - cache_hits_total, cache_misses_total, cache_errors_total
  - events_published_total, events_processed_total

# Usage

	start := time.Now()
	err := store.Save(ctx, record)
	metrics.RecordDBQuery("INSERT", "recommendation_history", time.Since(start), err)

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
