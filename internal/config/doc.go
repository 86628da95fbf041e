// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package config loads and validates Cinematch configuration.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/cinematch/config.yaml
  - Environment variables mapped through envTransformFunc

# Environment Variables

TMDb:
  - TMDB_API_KEY: API key (required)
  - TMDB_BASE_URL: API base (default: https://api.themoviedb.org/3)
  - TMDB_TIMEOUT: Per-call timeout (default: 30s)
  - TMDB_RATE_LIMIT, TMDB_RATE_BURST: Shared limiter (default: 4/s, burst 4)

HTTP server:
  - HTTP_HOST, HTTP_PORT (or PORT): Bind address (default: 0.0.0.0:5000)
  - CORS_ORIGINS: Comma-separated origins (default: localhost:3000 and 127.0.0.1:3000)
  - RATE_LIMIT_REQS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Storage:
  - DUCKDB_PATH: History database file; empty runs in memory
  - CACHE_ENABLED, CACHE_PATH, CACHE_IN_MEMORY, CACHE_TTL

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	logging.Init(cfg.Logging.LoggerConfig())
*/
package config
