// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/history"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	TMDb       tmdb.Config      `koanf:"tmdb"`
	Recommend  recommend.Config `koanf:"recommend"`
	Database   history.Config   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	Events     events.Config    `koanf:"events"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists the allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow are allowed per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// RecommendRateLimitReqs is the stricter per-IP budget for ranking
	// sessions within the same window.
	RecommendRateLimitReqs int `koanf:"recommend_rate_limit_reqs"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// CacheConfig holds the TMDb response cache settings.
type CacheConfig struct {
	// Enabled turns both caches on. Default: true
	Enabled bool `koanf:"enabled"`

	// Path is the Badger directory for movie details.
	Path string `koanf:"path"`

	// InMemory keeps the details cache off disk.
	InMemory bool `koanf:"in_memory"`

	// DetailsTTL is the lifetime of a cached movie. Default: 24h
	DetailsTTL time.Duration `koanf:"details_ttl"`

	// SearchSize and SearchTTL bound the in-memory title search cache.
	SearchSize int           `koanf:"search_size"`
	SearchTTL  time.Duration `koanf:"search_ttl"`

	// GCInterval is how often value log GC and expiry sweeps run. Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`
}

// StoreConfig converts the settings for cache.Open.
func (c CacheConfig) StoreConfig() cache.Config {
	return cache.Config{
		Path:     c.Path,
		InMemory: c.InMemory,
		TTL:      c.DetailsTTL,
	}
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// LoggerConfig converts the settings for logging.Init.
func (l LoggingConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// SupervisorConfig holds the suture tree settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
