// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

// metadataCaches holds the optional TMDb response caches.
type metadataCaches struct {
	details *cache.Store
	search  *cache.LRU[[]recommend.Item]
}

// initCaches opens the Badger details cache and the in-memory search cache.
// Both are nil when caching is disabled.
func initCaches(cfg *config.CacheConfig) (*metadataCaches, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Metadata cache disabled")
		return &metadataCaches{}, nil
	}

	details, err := cache.Open(cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open details cache: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("details_ttl", cfg.DetailsTTL).
		Int("search_size", cfg.SearchSize).
		Msg("Metadata cache initialized")

	return &metadataCaches{
		details: details,
		search:  cache.NewLRU[[]recommend.Item](cfg.SearchSize, cfg.SearchTTL),
	}, nil
}

func (c *metadataCaches) clientOptions() []tmdb.Option {
	var opts []tmdb.Option
	if c.details != nil {
		opts = append(opts, tmdb.WithDetailsCache(c.details))
	}
	if c.search != nil {
		opts = append(opts, tmdb.WithSearchCache(c.search))
	}
	return opts
}

// maintainer returns nil when caching is disabled.
func (c *metadataCaches) maintainer(interval time.Duration) *cache.Maintainer {
	if c.details == nil {
		return nil
	}
	return cache.NewMaintainer(c.details, interval, c.search)
}

func (c *metadataCaches) maintenanceService(m *cache.Maintainer) *services.RunnerService {
	return services.NewRunnerService("cache-maintenance", m, cache.ErrClosed)
}

// Close closes the details cache.
func (c *metadataCaches) Close() {
	if c.details == nil {
		return
	}
	if err := c.details.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing metadata cache")
	}
}
