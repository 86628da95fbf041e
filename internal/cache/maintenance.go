// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Sweeper is a cache that can drop its expired entries.
// Satisfied by *LRU.
type Sweeper interface {
	CleanupExpired() int
}

// Maintainer periodically runs Badger value log GC on a Store and sweeps
// expired entries out of in-memory tiers.
type Maintainer struct {
	store    *Store
	sweepers []Sweeper
	interval time.Duration
}

// NewMaintainer creates a Maintainer. A nil store is allowed when only
// in-memory tiers are in use.
func NewMaintainer(store *Store, interval time.Duration, sweepers ...Sweeper) *Maintainer {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Maintainer{store: store, sweepers: sweepers, interval: interval}
}

// RunOnce performs one maintenance pass and returns the number of
// in-memory entries removed.
func (m *Maintainer) RunOnce() (int, error) {
	removed := 0
	for _, s := range m.sweepers {
		removed += s.CleanupExpired()
	}
	if m.store == nil {
		return removed, nil
	}
	if err := m.store.RunGC(); err != nil {
		metrics.CacheErrors.WithLabelValues("store", "gc").Inc()
		return removed, err
	}
	return removed, nil
}

// RunWithContext runs maintenance passes until ctx is canceled.
func (m *Maintainer) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := m.RunOnce()
			if errors.Is(err, ErrClosed) {
				return err
			}
			if err != nil {
				logging.Warn().Err(err).Msg("Cache maintenance failed")
				continue
			}
			logging.Debug().Int("expired_removed", removed).Msg("Cache maintenance completed")
		}
	}
}
