// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api provides the HTTP REST API for Cinematch.

The API wraps the ranking engine, the recommendation history and the
event bus behind a chi router. All responses are JSON and carry a
"success" flag; failures carry an "error" message.

# Endpoints

Health:
  - GET /api/health: liveness
  - GET /api/health/ready: readiness, pings the history database and
    reports engine counters, event counters and the TMDb breaker state
  - GET /api/health/latency: per-route latency percentiles

Recommendations:
  - POST /api/recommend: rank similar movies for a reference title
  - GET /api/search-movies?q=: best title match

History:
  - GET /api/history?limit=: recent sessions (default 10, at most 100)
  - GET /api/history/{id}: one session with its recommendations
  - DELETE /api/history/{id}: delete one session
  - DELETE /api/history/clear: delete all sessions
  - GET /api/statistics: aggregate statistics

Observability:
  - GET /metrics: Prometheus metrics

# Recommend Request

	{
	  "movieName": "Inception",
	  "language": "mixed",
	  "genreWeight": 0.7,
	  "overviewWeight": 0.3,
	  "topK": 5
	}

Weights must each lie in [0,1] and sum to 1.0 (within 0.01); omitted
weights take the configured defaults. A reference that cannot be found
is a 200 response with success=false.

# Middleware

Global middleware runs in this order: request id with logging context,
real IP, request logging, panic recovery, CORS, Prometheus metrics and
latency tracking. The /api group is rate limited per client IP and
/api/recommend carries a stricter limit of its own.
*/
package api
