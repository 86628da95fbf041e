// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no stray config.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
	t.Setenv(ConfigPathEnvVar, "")
	return tmpDir
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.TMDb.APIKey != "" {
		t.Errorf("TMDb.APIKey should be empty by default, got %q", cfg.TMDb.APIKey)
	}
	if cfg.TMDb.Timeout != 30*time.Second {
		t.Errorf("TMDb.Timeout = %v, want 30s", cfg.TMDb.Timeout)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Recommend.Limits.DefaultTopK != 5 || cfg.Recommend.Limits.MaxDetailFetches != 30 {
		t.Errorf("Recommend.Limits = %+v", cfg.Recommend.Limits)
	}
	if cfg.Recommend.Retry.Attempts != 3 {
		t.Errorf("Recommend.Retry.Attempts = %d, want 3", cfg.Recommend.Retry.Attempts)
	}
	if !cfg.Cache.Enabled || cfg.Cache.DetailsTTL != 24*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	// Defaults plus an API key must validate.
	cfg.TMDb.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		envVar string
		want   string
	}{
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"TMDB_RATE_LIMIT", "tmdb.requests_per_second"},
		{"HTTP_PORT", "server.port"},
		{"PORT", "server.port"},
		{"CORS_ORIGINS", "server.cors_origins"},
		{"DUCKDB_PATH", "database.path"},
		{"CACHE_TTL", "cache.details_ttl"},
		{"RECOMMEND_MAX_DETAIL_FETCHES", "recommend.limits.max_detail_fetches"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},
		{"HOME", ""},
		{"RANDOM_VAR", ""},
	}
	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			if got := envTransformFunc(tt.envVar); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.envVar, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	t.Run("no config file exists", func(t *testing.T) {
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("server:\n  port: 1\n"), 0600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(customPath, []byte("server:\n  port: 1\n"), 0600); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, customPath)

		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	chdirTemp(t)
	t.Setenv("TMDB_API_KEY", "test_api_key_12345")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TMDB_TIMEOUT", "10s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RECOMMEND_DEFAULT_TOP_K", "8")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.TMDb.APIKey != "test_api_key_12345" {
		t.Errorf("TMDb.APIKey = %q", cfg.TMDb.APIKey)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.TMDb.Timeout != 10*time.Second {
		t.Errorf("TMDb.Timeout = %v, want 10s", cfg.TMDb.Timeout)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Recommend.Limits.DefaultTopK != 8 {
		t.Errorf("Recommend.Limits.DefaultTopK = %d, want 8", cfg.Recommend.Limits.DefaultTopK)
	}

	// Unset values keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.TMDb.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("TMDb.BaseURL = %q (default)", cfg.TMDb.BaseURL)
	}
	if cfg.Recommend.Weights.Genre != 0.7 {
		t.Errorf("Recommend.Weights.Genre = %v, want 0.7 (default)", cfg.Recommend.Weights.Genre)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	configContent := `
tmdb:
  api_key: file_key
  requests_per_second: 2
server:
  port: 8080
  cors_origins:
    - https://movies.example.com
cache:
  in_memory: true
  details_ttl: 1h
database:
  path: ""
recommend:
  limits:
    max_detail_fetches: 15
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.TMDb.APIKey != "file_key" || cfg.TMDb.RequestsPerSecond != 2 {
		t.Errorf("TMDb = %+v", cfg.TMDb)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://movies.example.com" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Cache.InMemory || cfg.Cache.DetailsTTL != time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Database.Path != "" {
		t.Errorf("Database.Path = %q, want empty (in-memory)", cfg.Database.Path)
	}
	if cfg.Recommend.Limits.MaxDetailFetches != 15 {
		t.Errorf("MaxDetailFetches = %d, want 15", cfg.Recommend.Limits.MaxDetailFetches)
	}
	if cfg.Recommend.Retry.Attempts != 3 {
		t.Errorf("Retry.Attempts = %d, want 3 (default)", cfg.Recommend.Retry.Attempts)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("tmdb:\n  api_key: file_key\nserver:\n  port: 8080\n"), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 (env wins over file)", cfg.Server.Port)
	}
	if cfg.TMDb.APIKey != "file_key" {
		t.Errorf("TMDb.APIKey = %q, want file_key", cfg.TMDb.APIKey)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{"TMDB_API_KEY": ""}},
		{"invalid port", map[string]string{"TMDB_API_KEY": "k", "HTTP_PORT": "70000"}},
		{"invalid log level", map[string]string{"TMDB_API_KEY": "k", "LOG_LEVEL": "loud"}},
		{"invalid base url", map[string]string{"TMDB_API_KEY": "k", "TMDB_BASE_URL": "ftp://tmdb.example.com"}},
		{"bad weights", map[string]string{"TMDB_API_KEY": "k", "RECOMMEND_GENRE_WEIGHT": "0.9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadWithKoanf(); err == nil {
				t.Error("LoadWithKoanf() error = nil, want validation error")
			}
		})
	}
}
