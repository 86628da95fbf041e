// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the production SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryPolicy retries one upstream call. Every attempt is preceded by
// CallDelay. A failed attempt that is not the last waits
// ConnectivityBackoff or ErrorBackoff depending on the failure kind.
// ErrNotFound and context errors end the loop immediately. A failure
// classified as permanent (see IsPermanentError) ends it with ErrNoData.
type RetryPolicy struct {
	cfg   RetryConfig
	sleep SleepFunc
}

// NewRetryPolicy creates a policy. A nil sleep selects ContextSleep.
func NewRetryPolicy(cfg RetryConfig, sleep SleepFunc) *RetryPolicy {
	if sleep == nil {
		sleep = ContextSleep
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &RetryPolicy{cfg: cfg, sleep: sleep}
}

// Sleep exposes the policy's sleeper so pacing pauses share it.
func (p *RetryPolicy) Sleep(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}

// Do runs fn under the policy. On exhaustion it returns an error wrapping
// ErrNoData and the last failure.
func (p *RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	attempt := 1
	for ; attempt <= p.cfg.Attempts; attempt++ {
		if err := p.sleep(ctx, p.cfg.CallDelay); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err
		permanent := IsPermanentError(err)

		connectivity := IsConnectivityError(err)
		reason := "error"
		backoff := p.cfg.ErrorBackoff
		if connectivity {
			reason = "connectivity"
			backoff = p.cfg.ConnectivityBackoff
		}

		logging.FromContext(ctx).Warn().
			Err(err).
			Str("operation", op).
			Int("attempt", attempt).
			Int("max_attempts", p.cfg.Attempts).
			Bool("connectivity", connectivity).
			Bool("permanent", permanent).
			Msg("Upstream call failed")

		if attempt == p.cfg.Attempts || permanent {
			break
		}
		metrics.UpstreamRetries.WithLabelValues(op, reason).Inc()
		if err := p.sleep(ctx, backoff); err != nil {
			return err
		}
	}

	metrics.UpstreamExhausted.WithLabelValues(op).Inc()
	return wrapNoData(op, attempt, lastErr)
}

// RetryingSource applies a RetryPolicy to every call of a MetadataSource.
type RetryingSource struct {
	source MetadataSource
	policy *RetryPolicy
}

// NewRetryingSource wraps source with policy.
func NewRetryingSource(source MetadataSource, policy *RetryPolicy) *RetryingSource {
	return &RetryingSource{source: source, policy: policy}
}

// Policy returns the wrapped policy.
func (s *RetryingSource) Policy() *RetryPolicy {
	return s.policy
}

// Search implements MetadataSource.
func (s *RetryingSource) Search(ctx context.Context, name string) ([]Item, error) {
	var items []Item
	err := s.policy.Do(ctx, "search", func(ctx context.Context) error {
		var err error
		items, err = s.source.Search(ctx, name)
		return err
	})
	return items, err
}

// Details implements MetadataSource.
func (s *RetryingSource) Details(ctx context.Context, id int) (*Item, error) {
	var item *Item
	err := s.policy.Do(ctx, "details", func(ctx context.Context) error {
		var err error
		item, err = s.source.Details(ctx, id)
		return err
	})
	return item, err
}

// Related implements MetadataSource.
func (s *RetryingSource) Related(ctx context.Context, id int, rel Relation) ([]Item, error) {
	var items []Item
	err := s.policy.Do(ctx, string(rel), func(ctx context.Context) error {
		var err error
		items, err = s.source.Related(ctx, id, rel)
		return err
	})
	return items, err
}

// Discover implements MetadataSource.
func (s *RetryingSource) Discover(ctx context.Context, code string) ([]Item, error) {
	var items []Item
	err := s.policy.Do(ctx, "discover", func(ctx context.Context) error {
		var err error
		items, err = s.source.Discover(ctx, code)
		return err
	})
	return items, err
}

// logDegraded records a call that yielded no data and was absorbed.
func logDegraded(logger *zerolog.Logger, op string, err error) {
	logger.Warn().Err(err).Str("operation", op).Msg("Continuing without upstream data")
}
