// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinematch/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	latency       *middleware.LatencyTracker
}

// NewRouter creates a Router. A nil chiMw selects the defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	latency := middleware.NewLatencyTracker(1000, defaultSlowRequest)
	handler.SetLatencyTracker(latency)
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		latency:       latency,
	}
}

// defaultSlowRequest is the latency above which a request is logged as slow.
// A ranking session paces roughly forty upstream calls.
const defaultSlowRequest = 90 * time.Second

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())      // X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(RequestLogger())             // One log line per request
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.latency.Middleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, msgEndpointNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/latency", router.handler.HealthLatency)
	})

	// ========================
	// API Endpoints
	// ========================
	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.With(router.chiMiddleware.RateLimitRecommend()).Post("/recommend", router.handler.Recommend)
		r.Get("/search-movies", router.handler.SearchMovies)

		r.Get("/history", router.handler.History)
		r.Delete("/history/clear", router.handler.ClearHistory)
		r.Get("/history/{id:[0-9]+}", router.handler.HistoryDetails)
		r.Delete("/history/{id:[0-9]+}", router.handler.DeleteHistory)

		r.Get("/statistics", router.handler.Statistics)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
