// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type cachedMovie struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true, TTL: ttl})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGet(t *testing.T) {
	s := openTestStore(t, 0)

	in := cachedMovie{ID: 27205, Title: "Inception", Genres: []string{"Action", "Science Fiction"}}
	if err := s.Set("details:27205", in); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var out cachedMovie
	ok, err := s.Get("details:27205", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if out.Title != "Inception" || len(out.Genres) != 2 {
		t.Errorf("Get() = %+v, want %+v", out, in)
	}

	if st := s.Stats(); st.Hits != 1 || st.Writes != 1 {
		t.Errorf("Stats() = %+v, want 1 hit and 1 write", st)
	}
}

func TestStore_Miss(t *testing.T) {
	s := openTestStore(t, 0)

	var out cachedMovie
	ok, err := s.Get("details:1", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for missing key")
	}
	if st := s.Stats(); st.Misses != 1 {
		t.Errorf("Misses = %d, want 1", st.Misses)
	}
}

func TestStore_TTLExpiration(t *testing.T) {
	s := openTestStore(t, 0)

	// Badger TTLs have one second resolution.
	if err := s.SetWithTTL("details:2", cachedMovie{ID: 2}, time.Second); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}
	time.Sleep(2100 * time.Millisecond)

	var out cachedMovie
	ok, err := s.Get("details:2", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("expected entry to expire")
	}
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t, time.Hour)

	if err := s.Set("details:3", cachedMovie{ID: 3}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete("details:3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("details:missing"); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}

	var out cachedMovie
	if ok, _ := s.Get("details:3", &out); ok {
		t.Error("expected deleted entry to be gone")
	}
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	var out cachedMovie
	if _, err := s.Get("k", &out); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after close error = %v, want ErrClosed", err)
	}
	if err := s.Set("k", out); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after close error = %v, want ErrClosed", err)
	}
	if err := s.RunGC(); !errors.Is(err, ErrClosed) {
		t.Errorf("RunGC() after close error = %v, want ErrClosed", err)
	}
}

func TestOpen_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing path", Config{}},
		{"negative ttl", Config{InMemory: true, TTL: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.cfg); err == nil {
				t.Error("Open() error = nil, want error")
			}
		})
	}
}

func TestStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Set("details:4", cachedMovie{ID: 4, Title: "Heat"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	var out cachedMovie
	ok, err := reopened.Get("details:4", &out)
	if err != nil || !ok {
		t.Fatalf("Get() after reopen = (%v, %v), want (true, nil)", ok, err)
	}
	if out.Title != "Heat" {
		t.Errorf("Title = %q, want Heat", out.Title)
	}
}

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[string](3, time.Minute)

	c.Add("a", "alpha")
	c.Add("b", "beta")
	c.Add("c", "gamma")

	if v, ok := c.Get("a"); !ok || v != "alpha" {
		t.Errorf("Get(a) = (%q, %v), want (alpha, true)", v, ok)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	c.Add("a", "alpha2")
	if v, _ := c.Get("a"); v != "alpha2" {
		t.Errorf("Get(a) after update = %q, want alpha2", v)
	}

	if !c.Remove("b") {
		t.Error("Remove(b) = false, want true")
	}
	if c.Remove("b") {
		t.Error("second Remove(b) = true, want false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Access 'a' to make it most recently used
	c.Get("a")

	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %q to be present", k)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected 'a' before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expected 'a' to be expired")
	}

	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 0 {
		t.Errorf("Stats() = (%d, %d, %d), want (1, 1, 0)", hits, misses, size)
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[int](0, 0)
	if c.capacity != 1000 {
		t.Errorf("capacity = %d, want 1000", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](50, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (n+j)%26))
				c.Add(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("Len() = %d, exceeds capacity", c.Len())
	}
}

func TestMaintainer_RunOnce(t *testing.T) {
	lru := NewLRU[int](10, time.Minute)
	now := time.Now()
	lru.now = func() time.Time { return now }
	lru.Add("old", 1)
	now = now.Add(time.Hour)
	lru.Add("fresh", 2)

	s := openTestStore(t, 0)
	m := NewMaintainer(s, 0, lru)
	if m.interval != 10*time.Minute {
		t.Errorf("interval = %v, want default 10m", m.interval)
	}

	removed, err := m.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestMaintainer_StopsOnCancel(t *testing.T) {
	m := NewMaintainer(nil, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := m.RunWithContext(ctx); err == nil {
		t.Error("RunWithContext() error = nil, want context error")
	}
}
