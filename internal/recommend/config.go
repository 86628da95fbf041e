// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the ranking engine.
type Config struct {
	// Weights are the defaults offered to callers that omit them.
	Weights Weights `json:"weights" koanf:"weights"`

	// Limits contains pool and result size limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Retry controls how each upstream call is retried.
	Retry RetryConfig `json:"retry" koanf:"retry"`

	// Pacing spaces out upstream calls that are not retries.
	Pacing PacingConfig `json:"pacing" koanf:"pacing"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultTopK is used when a request does not set TopK.
	// Default: 5.
	DefaultTopK int `json:"default_top_k" koanf:"default_top_k"`

	// MaxTopK caps any requested TopK.
	// Default: 20.
	MaxTopK int `json:"max_top_k" koanf:"max_top_k"`

	// MinPoolSize is the language-filtered pool size below which the pool
	// is widened with discover results.
	// Default: 20.
	MinPoolSize int `json:"min_pool_size" koanf:"min_pool_size"`

	// MaxDetailFetches caps candidate detail fetches per session.
	// Default: 30.
	MaxDetailFetches int `json:"max_detail_fetches" koanf:"max_detail_fetches"`
}

// RetryConfig controls the per-call retry policy.
type RetryConfig struct {
	// Attempts is the total number of tries per call.
	// Default: 3.
	Attempts int `json:"attempts" koanf:"attempts"`

	// CallDelay is slept before every attempt.
	// Default: 500ms.
	CallDelay time.Duration `json:"call_delay" koanf:"call_delay"`

	// ConnectivityBackoff is slept after a connectivity failure.
	// Default: 2s.
	ConnectivityBackoff time.Duration `json:"connectivity_backoff" koanf:"connectivity_backoff"`

	// ErrorBackoff is slept after any other failure.
	// Default: 1s.
	ErrorBackoff time.Duration `json:"error_backoff" koanf:"error_backoff"`
}

// PacingConfig spaces out bursts of upstream calls.
type PacingConfig struct {
	// RelatedPause separates the recommended and similar list fetches.
	// Default: 1s.
	RelatedPause time.Duration `json:"related_pause" koanf:"related_pause"`

	// DetailBatchSize is the number of candidate detail fetches between pauses.
	// Default: 5.
	DetailBatchSize int `json:"detail_batch_size" koanf:"detail_batch_size"`

	// DetailBatchPause is slept after every DetailBatchSize fetches.
	// Default: 1s.
	DetailBatchPause time.Duration `json:"detail_batch_pause" koanf:"detail_batch_pause"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{Genre: 0.7, Overview: 0.3},
		Limits: LimitsConfig{
			DefaultTopK:      5,
			MaxTopK:          20,
			MinPoolSize:      20,
			MaxDetailFetches: 30,
		},
		Retry: RetryConfig{
			Attempts:            3,
			CallDelay:           500 * time.Millisecond,
			ConnectivityBackoff: 2 * time.Second,
			ErrorBackoff:        time.Second,
		},
		Pacing: PacingConfig{
			RelatedPause:     time.Second,
			DetailBatchSize:  5,
			DetailBatchPause: time.Second,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}

	if c.Limits.DefaultTopK < 1 {
		return fmt.Errorf("limits.default_top_k must be positive, got %d", c.Limits.DefaultTopK)
	}
	if c.Limits.MaxTopK < c.Limits.DefaultTopK {
		return fmt.Errorf("limits.max_top_k must be >= limits.default_top_k, got %d < %d",
			c.Limits.MaxTopK, c.Limits.DefaultTopK)
	}
	if c.Limits.MinPoolSize < 0 {
		return fmt.Errorf("limits.min_pool_size must be non-negative, got %d", c.Limits.MinPoolSize)
	}
	if c.Limits.MaxDetailFetches < 1 {
		return fmt.Errorf("limits.max_detail_fetches must be positive, got %d", c.Limits.MaxDetailFetches)
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be positive, got %d", c.Retry.Attempts)
	}
	if c.Retry.CallDelay < 0 {
		return fmt.Errorf("retry.call_delay must be non-negative, got %v", c.Retry.CallDelay)
	}
	if c.Retry.ConnectivityBackoff < 0 || c.Retry.ErrorBackoff < 0 {
		return fmt.Errorf("retry backoffs must be non-negative, got %v and %v",
			c.Retry.ConnectivityBackoff, c.Retry.ErrorBackoff)
	}

	if c.Pacing.RelatedPause < 0 || c.Pacing.DetailBatchPause < 0 {
		return fmt.Errorf("pacing pauses must be non-negative, got %v and %v",
			c.Pacing.RelatedPause, c.Pacing.DetailBatchPause)
	}
	if c.Pacing.DetailBatchSize < 0 {
		return fmt.Errorf("pacing.detail_batch_size must be non-negative, got %d", c.Pacing.DetailBatchSize)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ResolveTopK applies the default and the cap to a requested TopK.
func (c *Config) ResolveTopK(requested int) int {
	if requested <= 0 {
		return c.Limits.DefaultTopK
	}
	if requested > c.Limits.MaxTopK {
		return c.Limits.MaxTopK
	}
	return requested
}
