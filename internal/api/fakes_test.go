// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/history"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/similarity"
)

// fakeRanker returns canned results and records the last request.
type fakeRanker struct {
	mu sync.Mutex

	result    *recommend.RankResult
	err       error
	items     []recommend.Item
	searchErr error

	stats     recommend.Stats

	lastReq recommend.RankRequest
	calls   int
}

func (f *fakeRanker) Rank(_ context.Context, req recommend.RankRequest) (*recommend.RankResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	f.calls++
	return f.result, f.err
}

func (f *fakeRanker) Search(_ context.Context, _ string) ([]recommend.Item, error) {
	return f.items, f.searchErr
}

func (f *fakeRanker) Stats() recommend.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// fakeUpstream reports a fixed breaker state.
type fakeUpstream string

func (f fakeUpstream) BreakerState() string { return string(f) }

// fakeCounter reports fixed event counters.
type fakeCounter struct{ processed, failed int64 }

func (f fakeCounter) Processed() int64 { return f.processed }
func (f fakeCounter) Failed() int64    { return f.failed }

// fakeHistory is an in-memory HistoryStore.
type fakeHistory struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]*history.Entry
	failAll error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{entries: make(map[int64]*history.Entry)}
}

func (f *fakeHistory) Save(_ context.Context, e *history.Entry) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return 0, f.failAll
	}
	f.nextID++
	f.entries[f.nextID] = e
	return f.nextID, nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]history.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	ids := make([]int64, 0, len(f.entries))
	for id := range f.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	var out []history.Summary
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		e := f.entries[id]
		out = append(out, history.Summary{
			ID:                 id,
			SearchedMovie:      e.Reference.Title,
			Language:           e.Language,
			NumRecommendations: len(e.Recommendations),
		})
	}
	return out, nil
}

func (f *fakeHistory) Get(_ context.Context, id int64) (*history.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, history.ErrNotFound
	}
	return &history.Details{
		ID:            id,
		SearchedMovie: history.SearchedMovie{Title: e.Reference.Title},
		Language:      e.Language,
	}, nil
}

func (f *fakeHistory) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeHistory) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.entries = make(map[int64]*history.Entry)
	return nil
}

func (f *fakeHistory) Statistics(_ context.Context) (*history.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	return &history.Statistics{TotalSearches: int64(len(f.entries))}, nil
}

func (f *fakeHistory) Ping(_ context.Context) error {
	return f.failAll
}

// fakePublisher collects published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*events.RankedEvent
	err    error
}

func (f *fakePublisher) PublishRanked(_ context.Context, ev *events.RankedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

var errStoreDown = errors.New("database is locked")

func testReference() *recommend.Item {
	return &recommend.Item{
		ID:          27205,
		Title:       "Inception",
		Language:    "en",
		ReleaseDate: "2010-07-15",
		Rating:      8.4,
		Overview:    "A thief who steals corporate secrets through dream-sharing technology.",
		Genres:      []recommend.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	}
}

func testCandidate(id int, title string, sim float64, rank int) recommend.ScoredCandidate {
	return recommend.ScoredCandidate{
		Item: recommend.Item{
			ID:          id,
			Title:       title,
			Language:    "en",
			ReleaseDate: "2014-11-05",
			Rating:      8.1,
			Overview:    "A crew travels through a wormhole.",
			Genres:      []recommend.Genre{{ID: 12, Name: "Adventure"}},
		},
		Scores: similarity.Scores{Similarity: sim, GenreSimilarity: sim, OverviewSimilarity: sim / 2},
		Rank:   rank,
	}
}

func okResult() *recommend.RankResult {
	return &recommend.RankResult{
		Success:   true,
		Status:    recommend.StatusOK,
		Reference: testReference(),
		Recommendations: []recommend.ScoredCandidate{
			testCandidate(157336, "Interstellar", 0.82, 1),
			testCandidate(49026, "The Dark Knight Rises", 0.71, 2),
		},
		TotalScored: 24,
	}
}
