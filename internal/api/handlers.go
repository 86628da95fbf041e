// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/history"
	"github.com/tomtom215/cinematch/internal/middleware"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Ranker runs ranking sessions and title searches. *recommend.Engine
// implements it.
type Ranker interface {
	Rank(ctx context.Context, req recommend.RankRequest) (*recommend.RankResult, error)
	Search(ctx context.Context, name string) ([]recommend.Item, error)
	Stats() recommend.Stats
}

// UpstreamStatus reports the metadata client's circuit breaker state.
// *tmdb.Client implements it.
type UpstreamStatus interface {
	BreakerState() string
}

// EventCounter reports how many ranking events were consumed.
// *events.Recorder implements it.
type EventCounter interface {
	Processed() int64
	Failed() int64
}

// HistoryStore persists ranking sessions. *history.Store implements it.
type HistoryStore interface {
	Save(ctx context.Context, e *history.Entry) (int64, error)
	Recent(ctx context.Context, limit int) ([]history.Summary, error)
	Get(ctx context.Context, id int64) (*history.Details, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	Statistics(ctx context.Context) (*history.Statistics, error)
	Ping(ctx context.Context) error
}

// EventPublisher publishes ranking session events. *events.Bus implements it.
type EventPublisher interface {
	PublishRanked(ctx context.Context, ev *events.RankedEvent) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: health and readiness
//   - handlers_recommend.go: recommendations and title search
//   - handlers_history.go: stored sessions and statistics
type Handler struct {
	engine    Ranker
	history   HistoryStore
	publisher EventPublisher
	latency   *middleware.LatencyTracker
	upstream  UpstreamStatus
	recorder  EventCounter

	defaults  recommend.Weights
	startTime time.Time
}

// NewHandler creates a Handler. defaults are applied to requests that
// omit genreWeight or overviewWeight.
func NewHandler(engine Ranker, store HistoryStore, defaults recommend.Weights) *Handler {
	return &Handler{
		engine:    engine,
		history:   store,
		defaults:  defaults,
		startTime: time.Now(),
	}
}

// SetEventPublisher sets the optional publisher for ranking session
// events. Passing nil disables publishing.
//
// Thread Safety: call once during startup.
func (h *Handler) SetEventPublisher(p EventPublisher) {
	h.publisher = p
}

// SetLatencyTracker exposes tracker statistics on the latency endpoint.
//
// Thread Safety: call once during startup.
func (h *Handler) SetLatencyTracker(lt *middleware.LatencyTracker) {
	h.latency = lt
}

// SetUpstreamStatus reports the upstream breaker state on the readiness
// endpoint.
//
// Thread Safety: call once during startup.
func (h *Handler) SetUpstreamStatus(u UpstreamStatus) {
	h.upstream = u
}

// SetEventCounter reports event recorder counters on the readiness
// endpoint.
//
// Thread Safety: call once during startup.
func (h *Handler) SetEventCounter(c EventCounter) {
	h.recorder = c
}
