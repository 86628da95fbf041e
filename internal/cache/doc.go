// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package cache provides the metadata caches that sit in front of TMDb.

# Overview

Two tiers are available:
  - LRU: a generic in-memory Least Recently Used cache with TTL, used for
    hot entries such as search results
  - Store: a BadgerDB-backed persistent cache with native TTL, used for
    movie details so restarts do not refetch the whole catalog

Both tiers are optional. The ranking result does not depend on whether
an entry was cached, only on the metadata itself.

# Usage Example

	store, err := cache.Open(cache.Config{Path: "./data/cache", TTL: 24 * time.Hour})
	if err != nil {
	    return err
	}
	defer store.Close()

	var item recommend.Item
	if ok, err := store.Get("details:27205", &item); err == nil && ok {
	    return &item, nil
	}

	searches := cache.NewLRU[[]recommend.Item](512, 10*time.Minute)
	searches.Add("search:inception", items)

# Cache Key Conventions

	details:{tmdb_id}       // Movie details (Store)
	search:{lowercase name} // Search results (LRU)

# Maintenance

Maintainer runs Badger value log GC and sweeps expired LRU entries on an
interval. It is run under the supervisor tree:

	m := cache.NewMaintainer(store, 10*time.Minute, searches)
	tree.AddDataService(services.NewCacheMaintenanceService(m))

# Thread Safety

All types in this package are safe for concurrent use.
*/
package cache
