// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
)

// RequestSample is one observed request.
type RequestSample struct {
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// RouteStats aggregates the samples of one method and route.
type RouteStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	P99MS        int64   `json:"p99_ms"`
	MinMS        int64   `json:"min_ms"`
	MaxMS        int64   `json:"max_ms"`
}

// LatencyTracker keeps a ring of the most recent request samples and
// warns about requests slower than its threshold. Ranking sessions pace
// their upstream calls, so the threshold is per tracker rather than fixed.
type LatencyTracker struct {
	mu      sync.RWMutex
	samples []RequestSample
	next    int
	full    bool
	slow    time.Duration
}

// NewLatencyTracker creates a tracker holding up to capacity samples.
// A slow threshold of zero disables slow request warnings.
func NewLatencyTracker(capacity int, slow time.Duration) *LatencyTracker {
	if capacity <= 0 {
		capacity = 1000
	}
	return &LatencyTracker{
		samples: make([]RequestSample, capacity),
		slow:    slow,
	}
}

// Record adds a sample, overwriting the oldest one when full.
func (lt *LatencyTracker) Record(s RequestSample) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.samples[lt.next] = s
	lt.next++
	if lt.next == len(lt.samples) {
		lt.next = 0
		lt.full = true
	}
}

// Len returns the number of stored samples.
func (lt *LatencyTracker) Len() int {
	lt.mu.RLock()
	defer lt.mu.RUnlock()
	return lt.lenLocked()
}

func (lt *LatencyTracker) lenLocked() int {
	if lt.full {
		return len(lt.samples)
	}
	return lt.next
}

// Recent returns up to n samples, oldest first.
func (lt *LatencyTracker) Recent(n int) []RequestSample {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	size := lt.lenLocked()
	if n > size {
		n = size
	}
	out := make([]RequestSample, n)
	start := lt.next - n
	if start < 0 {
		start += len(lt.samples)
	}
	for i := 0; i < n; i++ {
		out[i] = lt.samples[(start+i)%len(lt.samples)]
	}
	return out
}

// Stats returns per-endpoint statistics, busiest endpoint first.
func (lt *LatencyTracker) Stats() []RouteStats {
	grouped := make(map[string][]int64)
	for _, s := range lt.Recent(lt.Len()) {
		key := s.Method + " " + s.Route
		grouped[key] = append(grouped[key], s.DurationMS)
	}

	stats := make([]RouteStats, 0, len(grouped))
	for endpoint, durations := range grouped {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		var sum int64
		for _, d := range durations {
			sum += d
		}
		stats = append(stats, RouteStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(durations)),
			AvgMS:        float64(sum) / float64(len(durations)),
			P50MS:        percentile(durations, 0.50),
			P95MS:        percentile(durations, 0.95),
			P99MS:        percentile(durations, 0.99),
			MinMS:        durations[0],
			MaxMS:        durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Middleware records every request passing through it.
func (lt *LatencyTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := routeLabel(r)
		lt.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: rec.statusCode,
			Timestamp:  start,
		})

		if lt.slow > 0 && elapsed > lt.slow {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Dur("threshold", lt.slow).
				Msg("Slow request detected")
		}
	})
}

// percentile returns the p-quantile of a sorted slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
