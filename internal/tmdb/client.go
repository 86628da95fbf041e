// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// maxErrorBodySize limits the amount of response body read for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// ErrStatus is wrapped by StatusError.
var ErrStatus = errors.New("unexpected TMDb status")

// StatusError is a non-2xx TMDb response other than 404.
type StatusError struct {
	Operation string
	Code      int
	Message   string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: TMDb returned status %d", e.Operation, e.Code)
	}
	return fmt.Sprintf("%s: TMDb returned status %d: %s", e.Operation, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Transient reports whether the status is worth retrying. The ranking
// engine's retry policy gives up after one attempt when it returns false.
func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Config configures the TMDb client.
type Config struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`

	// Timeout bounds a single HTTP call.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond and Burst configure the shared limiter.
	// RequestsPerSecond <= 0 disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.themoviedb.org/3",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 4,
		Burst:             4,
		Breaker:           DefaultBreakerConfig(),
	}
}

// Client is a recommend.MetadataSource backed by the TMDb v3 API.
// Each method performs exactly one HTTP attempt; retries are the caller's
// concern. A Client is safe for concurrent use and all sessions share its
// rate limiter.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration

	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker

	details  *cache.Store
	searches *cache.LRU[[]recommend.Item]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithDetailsCache caches detail responses in store.
func WithDetailsCache(store *cache.Store) Option {
	return func(c *Client) { c.details = store }
}

// WithSearchCache memoizes search results in lru.
func WithSearchCache(lru *cache.LRU[[]recommend.Item]) Option {
	return func(c *Client) { c.searches = lru }
}

var _ recommend.MetadataSource = (*Client)(nil)

// NewClient creates a TMDb client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tmdb api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid tmdb base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Breaker.MaxRequests == 0 {
		cfg.Breaker = DefaultBreakerConfig()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		breaker: newBreaker("tmdb-api", cfg.Breaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BreakerState returns the circuit breaker state.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

// Search returns page 1 of the search results for name.
func (c *Client) Search(ctx context.Context, name string) ([]recommend.Item, error) {
	key := "search:" + strings.ToLower(strings.TrimSpace(name))
	if c.searches != nil {
		if items, ok := c.searches.Get(key); ok {
			metrics.RecordCacheLookup("search", true)
			return append([]recommend.Item(nil), items...), nil
		}
		metrics.RecordCacheLookup("search", false)
	}

	params := url.Values{}
	params.Set("query", name)
	var p page
	if err := c.get(ctx, "search", "/search/movie", params, &p); err != nil {
		return nil, err
	}
	items := p.items()

	if c.searches != nil && len(items) > 0 {
		c.searches.Add(key, append([]recommend.Item(nil), items...))
	}
	return items, nil
}

// Details returns the full movie, including genres.
func (c *Client) Details(ctx context.Context, id int) (*recommend.Item, error) {
	key := "details:" + strconv.Itoa(id)
	if c.details != nil {
		var cached recommend.Item
		ok, err := c.details.Get(key, &cached)
		switch {
		case err != nil:
			metrics.CacheErrors.WithLabelValues("details", "get").Inc()
			logging.FromContext(ctx).Warn().Err(err).Int("movie_id", id).Msg("Details cache read failed")
		case ok:
			metrics.RecordCacheLookup("details", true)
			return &cached, nil
		default:
			metrics.RecordCacheLookup("details", false)
		}
	}

	params := url.Values{}
	params.Set("append_to_response", "keywords,credits")
	var m movie
	if err := c.get(ctx, "details", "/movie/"+strconv.Itoa(id), params, &m); err != nil {
		return nil, err
	}
	item := m.toItem()

	if c.details != nil {
		if err := c.details.Set(key, item); err != nil {
			metrics.CacheErrors.WithLabelValues("details", "set").Inc()
			logging.FromContext(ctx).Warn().Err(err).Int("movie_id", id).Msg("Details cache write failed")
		}
	}
	return &item, nil
}

// Related returns page 1 of the recommendations or similar list for id.
func (c *Client) Related(ctx context.Context, id int, rel recommend.Relation) ([]recommend.Item, error) {
	switch rel {
	case recommend.RelationRecommended, recommend.RelationSimilar:
	default:
		return nil, fmt.Errorf("unknown relation %q", rel)
	}
	params := url.Values{}
	params.Set("page", "1")
	var p page
	path := fmt.Sprintf("/movie/%d/%s", id, rel)
	if err := c.get(ctx, string(rel), path, params, &p); err != nil {
		return nil, err
	}
	return p.items(), nil
}

// Discover returns the most popular movies originally in language code.
func (c *Client) Discover(ctx context.Context, code string) ([]recommend.Item, error) {
	params := url.Values{}
	params.Set("with_original_language", code)
	params.Set("sort_by", "popularity.desc")
	params.Set("page", "1")
	var p page
	if err := c.get(ctx, "discover", "/discover/movie", params, &p); err != nil {
		return nil, err
	}
	return p.items(), nil
}

// get performs one rate limited, circuit-protected GET and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	_, err := c.breaker.execute(func() (any, error) {
		return nil, c.do(ctx, op, path, params, out)
	})
	metrics.RecordUpstreamRequest(op, resultLabel(err), time.Since(start))
	return err
}

func (c *Client) wait(ctx context.Context) error {
	start := time.Now()
	err := c.limiter.Wait(ctx)
	metrics.UpstreamRateLimitWait.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, path string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("%s %s: %w", op, path, recommend.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Operation: op, Code: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// classifyTransportError marks connection-level failures with
// recommend.ErrUnreachable. Timeouts and cancellations are left as-is.
func classifyTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: HTTP request failed: %w", op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: HTTP request timed out: %w", op, err)
	}
	if recommend.IsConnectivityError(err) {
		return fmt.Errorf("%s: %w: %w", op, recommend.ErrUnreachable, err)
	}
	return fmt.Errorf("%s: HTTP request failed: %w", op, err)
}

// readErrorMessage extracts the TMDb status_message, falling back to the
// raw (bounded) body.
func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
		return apiErr.StatusMessage
	}
	return strings.TrimSpace(string(body))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recommend.ErrNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrUnreachable):
		return "unreachable"
	default:
		return "error"
	}
}
