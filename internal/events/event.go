// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// TopicRanked carries one RankedEvent per finished ranking session.
const TopicRanked = "recommendations.ranked"

// RankedEvent summarizes a finished ranking session.
type RankedEvent struct {
	EventID     string    `json:"event_id"`
	RequestID   string    `json:"request_id,omitempty"`
	Reference   string    `json:"reference"`
	ReferenceID int       `json:"reference_id,omitempty"`
	Status      string    `json:"status"`
	Language    string    `json:"language"`
	PoolSize    int       `json:"pool_size"`
	TotalScored int       `json:"total_scored"`
	Dropped     int       `json:"dropped"`
	Returned    int       `json:"returned"`
	HistoryID   int64     `json:"history_id,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRankedEvent builds an event from a ranking result. name is the
// reference name as requested; the resolved title wins when present.
func NewRankedEvent(name string, lang recommend.Language, res *recommend.RankResult, historyID int64) *RankedEvent {
	ev := &RankedEvent{
		EventID:     uuid.New().String(),
		RequestID:   res.RequestID,
		Reference:   name,
		Status:      string(res.Status),
		Language:    lang.String(),
		PoolSize:    res.PoolSize,
		TotalScored: res.TotalScored,
		Dropped:     res.Dropped,
		Returned:    len(res.Recommendations),
		HistoryID:   historyID,
		DurationMS:  res.Duration.Milliseconds(),
		Timestamp:   time.Now().UTC(),
	}
	if res.Reference != nil {
		ev.Reference = res.Reference.Title
		ev.ReferenceID = res.Reference.ID
	}
	return ev
}

// Validate checks required fields.
func (e *RankedEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// Duration returns the session duration.
func (e *RankedEvent) Duration() time.Duration {
	return time.Duration(e.DurationMS) * time.Millisecond
}

func (e *RankedEvent) marshal() ([]byte, error) {
	return json.Marshal(e)
}

func unmarshalRanked(data []byte) (*RankedEvent, error) {
	var e RankedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode ranked event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
