// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// Recorder consumes RankedEvents, updates the session metrics and logs a
// summary line for each session.
type Recorder struct {
	bus    *Bus
	logger zerolog.Logger

	processed atomic.Int64
	failed    atomic.Int64

	readyOnce sync.Once
	ready     chan struct{}
}

// NewRecorder creates a Recorder for bus.
func NewRecorder(bus *Bus, logger zerolog.Logger) *Recorder {
	return &Recorder{
		bus:    bus,
		logger: logger.With().Str("component", "event-recorder").Logger(),
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the recorder has subscribed.
func (r *Recorder) Ready() <-chan struct{} {
	return r.ready
}

// Processed returns the number of events handled successfully.
func (r *Recorder) Processed() int64 {
	return r.processed.Load()
}

// Failed returns the number of events that could not be decoded.
func (r *Recorder) Failed() int64 {
	return r.failed.Load()
}

// RunWithContext consumes events until ctx is canceled or the bus closes.
func (r *Recorder) RunWithContext(ctx context.Context) error {
	msgs, err := r.bus.Subscribe(ctx, TopicRanked)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicRanked, err)
	}
	r.readyOnce.Do(func() { close(r.ready) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%s subscription closed", TopicRanked)
			}
			r.handle(msg.Payload)
			msg.Ack()
		}
	}
}

func (r *Recorder) handle(payload []byte) {
	ev, err := unmarshalRanked(payload)
	metrics.RecordEvent(false, TopicRanked, err)
	if err != nil {
		r.failed.Add(1)
		r.logger.Warn().Err(err).Msg("Dropping malformed ranked event")
		return
	}

	metrics.RecordRankSession(ev.Status, ev.Duration(), ev.PoolSize, ev.TotalScored, ev.Dropped)
	r.processed.Add(1)

	r.logger.Info().
		Str("event_id", ev.EventID).
		Str("request_id", ev.RequestID).
		Str("reference", ev.Reference).
		Str("status", ev.Status).
		Str("language", ev.Language).
		Int("pool_size", ev.PoolSize).
		Int("scored", ev.TotalScored).
		Int("returned", ev.Returned).
		Int64("history_id", ev.HistoryID).
		Int64("duration_ms", ev.DurationMS).
		Msg("Ranking session recorded")
}
