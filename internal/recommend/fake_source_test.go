// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeSource is an in-memory MetadataSource. failures[key] makes the next
// N calls for key fail with failErr (or errFakeTransient).
type fakeSource struct {
	mu sync.Mutex

	search      map[string][]Item
	details     map[int]Item
	recommended map[int][]Item
	similar     map[int][]Item
	discover    map[string][]Item

	failures map[string]int
	failErr  map[string]error
	calls    []string
}

var errFakeTransient = fmt.Errorf("fake upstream: status 503")

func newFakeSource() *fakeSource {
	return &fakeSource{
		search:      make(map[string][]Item),
		details:     make(map[int]Item),
		recommended: make(map[int][]Item),
		similar:     make(map[int][]Item),
		discover:    make(map[string][]Item),
		failures:    make(map[string]int),
		failErr:     make(map[string]error),
	}
}

// failNext makes the next n calls for key fail with err.
func (f *fakeSource) failNext(key string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[key] = n
	f.failErr[key] = err
}

func (f *fakeSource) record(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if f.failures[key] > 0 {
		f.failures[key]--
		if err := f.failErr[key]; err != nil {
			return err
		}
		return errFakeTransient
	}
	return nil
}

func (f *fakeSource) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeSource) Search(_ context.Context, name string) ([]Item, error) {
	if err := f.record("search:" + name); err != nil {
		return nil, err
	}
	return f.search[name], nil
}

func (f *fakeSource) Details(_ context.Context, id int) (*Item, error) {
	if err := f.record(fmt.Sprintf("details:%d", id)); err != nil {
		return nil, err
	}
	item, ok := f.details[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (f *fakeSource) Related(_ context.Context, id int, rel Relation) ([]Item, error) {
	if err := f.record(fmt.Sprintf("%s:%d", rel, id)); err != nil {
		return nil, err
	}
	if rel == RelationRecommended {
		return f.recommended[id], nil
	}
	return f.similar[id], nil
}

func (f *fakeSource) Discover(_ context.Context, code string) ([]Item, error) {
	if err := f.record("discover:" + code); err != nil {
		return nil, err
	}
	return f.discover[code], nil
}

// sleepRecorder is a SleepFunc that records durations without waiting.
type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

func movie(id int, title, lang, overview string, genres ...int) Item {
	return Item{
		ID:            id,
		Title:         title,
		OriginalTitle: title,
		Language:      lang,
		ReleaseDate:   "2010-07-16",
		Rating:        7.5,
		Overview:      overview,
		GenreIDs:      genres,
	}
}

// withGenres returns item as a detail fetch would, with Genres filled.
//
//nolint:gocritic // test helper
func withGenres(item Item) Item {
	item.Genres = make([]Genre, 0, len(item.GenreIDs))
	for _, id := range item.GenreIDs {
		item.Genres = append(item.Genres, Genre{ID: id, Name: fmt.Sprintf("genre-%d", id)})
	}
	item.GenreIDs = nil
	return item
}

// addMovie registers item in the listing maps and its details.
//
//nolint:gocritic // test helper
func (f *fakeSource) addMovie(item Item) Item {
	f.details[item.ID] = withGenres(item)
	return item
}
