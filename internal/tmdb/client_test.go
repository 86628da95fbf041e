// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package tmdb

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const inceptionDetails = `{
	"id": 27205,
	"title": "Inception",
	"original_title": "Inception",
	"original_language": "EN",
	"release_date": "2010-07-15",
	"vote_average": 8.4,
	"overview": "A thief who steals corporate secrets through dream-sharing technology.",
	"popularity": 90.5,
	"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}],
	"keywords": {"keywords": [{"id": 1, "name": "dream"}]}
}`

const listing = `{
	"page": 1,
	"total_pages": 1,
	"total_results": 2,
	"results": [
		{"id": 155, "title": "The Dark Knight", "original_language": "en", "release_date": "2008-07-16", "vote_average": 8.5, "overview": "Batman raises the stakes.", "genre_ids": [18, 28, 80]},
		{"id": 157336, "title": "Interstellar", "original_language": "en", "release_date": "2014-11-05", "vote_average": 8.4, "overview": "Explorers travel through a wormhole.", "genre_ids": [12, 18, 878]}
	]
}`

type recordedRequest struct {
	path  string
	query map[string]string
}

type requestLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *requestLog) first(t *testing.T) recordedRequest {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	return l.reqs[0]
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		log.mu.Lock()
		log.reqs = append(log.reqs, recordedRequest{path: r.URL.Path, query: q})
		log.mu.Unlock()
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept header = %q, want application/json", r.Header.Get("Accept"))
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, log
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.RequestsPerSecond = 0
	cfg.Timeout = 2 * time.Second
	c, err := NewClient(cfg, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("NewClient() without api key error = nil, want error")
	}

	c, err := NewClient(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.baseURL != "https://api.themoviedb.org/3" {
		t.Errorf("baseURL = %q, want default", c.baseURL)
	}
	if c.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", c.timeout)
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %q, want closed", c.BreakerState())
	}
}

func TestClient_Details(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(inceptionDetails))
	})
	c := newTestClient(t, srv.URL)

	item, err := c.Details(context.Background(), 27205)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if item.Title != "Inception" {
		t.Errorf("Title = %q, want Inception", item.Title)
	}
	if item.Language != "en" {
		t.Errorf("Language = %q, want lowercase en", item.Language)
	}
	if got := item.AllGenreIDs(); len(got) != 2 || got[0] != 28 || got[1] != 878 {
		t.Errorf("AllGenreIDs() = %v, want [28 878]", got)
	}

	r := reqs.first(t)
	if r.path != "/movie/27205" {
		t.Errorf("path = %q, want /movie/27205", r.path)
	}
	if r.query["api_key"] != "test-key" {
		t.Errorf("api_key = %q, want test-key", r.query["api_key"])
	}
	if r.query["append_to_response"] != "keywords,credits" {
		t.Errorf("append_to_response = %q", r.query["append_to_response"])
	}
}

func TestClient_ListEndpoints(t *testing.T) {
	tests := []struct {
		name      string
		call      func(c *Client) ([]recommend.Item, error)
		wantPath  string
		wantQuery map[string]string
	}{
		{
			name:      "search",
			call:      func(c *Client) ([]recommend.Item, error) { return c.Search(context.Background(), "dark knight") },
			wantPath:  "/search/movie",
			wantQuery: map[string]string{"query": "dark knight"},
		},
		{
			name: "recommendations",
			call: func(c *Client) ([]recommend.Item, error) {
				return c.Related(context.Background(), 27205, recommend.RelationRecommended)
			},
			wantPath:  "/movie/27205/recommendations",
			wantQuery: map[string]string{"page": "1"},
		},
		{
			name: "similar",
			call: func(c *Client) ([]recommend.Item, error) {
				return c.Related(context.Background(), 27205, recommend.RelationSimilar)
			},
			wantPath:  "/movie/27205/similar",
			wantQuery: map[string]string{"page": "1"},
		},
		{
			name:     "discover",
			call:     func(c *Client) ([]recommend.Item, error) { return c.Discover(context.Background(), "hi") },
			wantPath: "/discover/movie",
			wantQuery: map[string]string{
				"with_original_language": "hi",
				"sort_by":                "popularity.desc",
				"page":                   "1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(listing))
			})
			c := newTestClient(t, srv.URL)

			items, err := tt.call(c)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if len(items) != 2 || items[0].ID != 155 || items[1].ID != 157336 {
				t.Fatalf("items = %+v, want ids [155 157336]", items)
			}
			if got := items[1].GenreIDs; len(got) != 3 {
				t.Errorf("GenreIDs = %v, want 3 ids", got)
			}

			r := reqs.first(t)
			if r.path != tt.wantPath {
				t.Errorf("path = %q, want %q", r.path, tt.wantPath)
			}
			for k, v := range tt.wantQuery {
				if r.query[k] != v {
					t.Errorf("query[%s] = %q, want %q", k, r.query[k], v)
				}
			}
		})
	}
}

func TestClient_Related_UnknownRelation(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	if _, err := c.Related(context.Background(), 1, recommend.Relation("sequels")); err == nil {
		t.Error("Related() with unknown relation error = nil, want error")
	}
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantNotFound  bool
		wantStatus    int
		wantTransient bool
		wantMessage   string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"status_code":34}`, wantNotFound: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"status_message":"Request count over limit."}`, wantStatus: 429, wantTransient: true, wantMessage: "Request count over limit."},
		{name: "server error", status: http.StatusBadGateway, body: "bad gateway", wantStatus: 502, wantTransient: true, wantMessage: "bad gateway"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"status_message":"Invalid API key"}`, wantStatus: 401, wantMessage: "Invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := newTestClient(t, srv.URL)

			_, err := c.Details(context.Background(), 1)
			if err == nil {
				t.Fatal("Details() error = nil, want error")
			}
			if got := errors.Is(err, recommend.ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(ErrNotFound) = %v, want %v", got, tt.wantNotFound)
			}
			if tt.wantNotFound {
				return
			}

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error %v is not a *StatusError", err)
			}
			if !errors.Is(err, ErrStatus) {
				t.Error("errors.Is(ErrStatus) = false")
			}
			if se.Code != tt.wantStatus {
				t.Errorf("Code = %d, want %d", se.Code, tt.wantStatus)
			}
			if se.Transient() != tt.wantTransient {
				t.Errorf("Transient() = %v, want %v", se.Transient(), tt.wantTransient)
			}
			if got := recommend.IsPermanentError(err); got == tt.wantTransient {
				t.Errorf("recommend.IsPermanentError() = %v, want %v", got, !tt.wantTransient)
			}
			if se.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", se.Message, tt.wantMessage)
			}
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := newTestClient(t, "http://"+addr)
	_, err = c.Details(context.Background(), 1)
	if err == nil {
		t.Fatal("Details() error = nil, want error")
	}
	if !errors.Is(err, recommend.ErrUnreachable) {
		t.Errorf("error %v does not wrap ErrUnreachable", err)
	}
	if !recommend.IsConnectivityError(err) {
		t.Error("IsConnectivityError() = false, want true")
	}
}

func TestClient_Timeout(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "k"
	cfg.RequestsPerSecond = 0
	cfg.Timeout = 50 * time.Millisecond
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Details(context.Background(), 1)
	if err == nil {
		t.Fatal("Details() error = nil, want timeout")
	}
	if errors.Is(err, recommend.ErrUnreachable) {
		t.Errorf("timeout classified as unreachable: %v", err)
	}
}

func TestClient_DecodeError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	c := newTestClient(t, srv.URL)
	if _, err := c.Search(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("Search() error = %v, want decode error", err)
	}
}

func TestClient_DetailsCache(t *testing.T) {
	var hits atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(inceptionDetails))
	})

	store, err := cache.Open(cache.Config{InMemory: true, TTL: time.Hour})
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	defer store.Close()

	c := newTestClient(t, srv.URL, WithDetailsCache(store))
	for i := 0; i < 3; i++ {
		item, err := c.Details(context.Background(), 27205)
		if err != nil {
			t.Fatalf("Details() #%d error = %v", i, err)
		}
		if len(item.Genres) != 2 {
			t.Errorf("Details() #%d genres = %v, want 2", i, item.Genres)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
}

func TestClient_SearchCache(t *testing.T) {
	var hits atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(listing))
	})

	lru := cache.NewLRU[[]recommend.Item](16, time.Minute)
	c := newTestClient(t, srv.URL, WithSearchCache(lru))

	first, err := c.Search(context.Background(), "Dark Knight")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	first[0].Title = "mutated"

	second, err := c.Search(context.Background(), "  dark knight ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if second[0].Title != "The Dark Knight" {
		t.Errorf("cached Title = %q, caller mutation leaked into cache", second[0].Title)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
}

func TestClient_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "k"
	cfg.RequestsPerSecond = 0
	cfg.Breaker = BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 3, FailureRatio: 0.5}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		_, _ = c.Details(context.Background(), 1)
	}
	if c.BreakerState() != "open" {
		t.Fatalf("BreakerState() = %q, want open", c.BreakerState())
	}

	_, err = c.Details(context.Background(), 1)
	if !errors.Is(err, recommend.ErrUnreachable) {
		t.Errorf("open circuit error = %v, want ErrUnreachable", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("upstream hits = %d, want 3 (rejected call must not reach server)", got)
	}
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "k"
	cfg.RequestsPerSecond = 0
	cfg.Breaker = BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := c.Details(context.Background(), 1); !errors.Is(err, recommend.ErrNotFound) {
			t.Fatalf("Details() error = %v, want ErrNotFound", err)
		}
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %q, want closed", c.BreakerState())
	}
}

func TestClient_RateLimiterCanceled(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	})
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "k"
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := c.Discover(context.Background(), "en"); err != nil {
		t.Fatalf("first Discover() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Discover(ctx, "en"); err == nil {
		t.Error("Discover() with exhausted limiter error = nil, want wait error")
	}
}

func TestClient_WithRetryingSource(t *testing.T) {
	var hits atomic.Int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(inceptionDetails))
	})
	c := newTestClient(t, srv.URL)

	var slept []time.Duration
	policy := recommend.NewRetryPolicy(recommend.DefaultConfig().Retry, func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})
	src := recommend.NewRetryingSource(c, policy)

	item, err := src.Details(context.Background(), 27205)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if item.ID != 27205 {
		t.Errorf("ID = %d, want 27205", item.ID)
	}
	want := []time.Duration{500 * time.Millisecond, time.Second, 500 * time.Millisecond, time.Second, 500 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}
