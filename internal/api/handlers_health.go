// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/middleware"
)

// readinessTimeout bounds the dependency checks of GET /api/health/ready.
const readinessTimeout = 2 * time.Second

// Health handles GET /api/health. It only reports that the process serves
// requests.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &HealthResponse{
		Status:  "healthy",
		Message: "Movie Recommender API is running",
	})
}

// HealthReady handles GET /api/health/ready. The history database must
// answer a ping. An open upstream circuit breaker degrades the status
// without failing the check.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := &ReadinessResponse{
		Success: true,
		Status:  "ready",
		Checks:  map[string]string{"database": "ok"},
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Engine:  h.engine.Stats(),
	}
	if h.recorder != nil {
		resp.Events = &EventCounts{Processed: h.recorder.Processed(), Failed: h.recorder.Failed()}
	}
	if h.upstream != nil {
		state := h.upstream.BreakerState()
		resp.Checks["tmdb"] = state
		if state == "open" {
			resp.Status = "degraded"
		}
	}

	status := http.StatusOK
	if err := h.history.Ping(ctx); err != nil {
		resp.Success = false
		resp.Status = "not_ready"
		resp.Checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

// HealthLatency handles GET /api/health/latency with per-route request
// latency statistics.
func (h *Handler) HealthLatency(w http.ResponseWriter, _ *http.Request) {
	stats := []middleware.RouteStats{}
	if h.latency != nil {
		stats = h.latency.Stats()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"routes":  stats,
	})
}
