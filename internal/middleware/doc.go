// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package middleware provides HTTP instrumentation for the chi router:
// Prometheus request metrics and an in-memory latency tracker. Both label
// requests by chi route pattern and must run inside the router so the
// pattern is known when the handler returns.
package middleware
