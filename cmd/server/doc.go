// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package main is the entry point for the Cinematch server application.

Cinematch recommends movies similar to a reference title. It pulls candidates
from TMDb, scores them by genre and overview similarity and returns the best
matches over a JSON API. Successful sessions are kept in a DuckDB history.

# Application Architecture

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   └── cache-maintenance (if CACHE_ENABLED)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-recorder
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. History: DuckDB database for past sessions and statistics
 4. Cache: Badger details cache and in-memory search cache
 5. TMDb client: rate limited, circuit broken, 30s timeout per call
 6. Ranking engine
 7. Event bus: Watermill in-process pub/sub
 8. Supervisor tree and HTTP server

# Configuration

Required:
  - TMDB_API_KEY: TMDb v3 API key

Common options:
  - HTTP_PORT (default 5000), HTTP_HOST (default 0.0.0.0)
  - DUCKDB_PATH (default data/cinematch.duckdb)
  - CACHE_ENABLED, CACHE_PATH, CACHE_TTL
  - TMDB_RATE_LIMIT: upstream requests per second
  - RECOMMEND_GENRE_WEIGHT, RECOMMEND_OVERVIEW_WEIGHT: default weights
  - LOG_LEVEL, LOG_FORMAT
  - CONFIG_PATH: explicit YAML config file

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server stops
accepting connections and waits up to HTTP_SHUTDOWN_TIMEOUT for in-flight
ranking sessions before the history database and caches are closed.

# Example Usage

	export TMDB_API_KEY=your-api-key
	export LOG_FORMAT=console
	./cinematch
*/
package main
