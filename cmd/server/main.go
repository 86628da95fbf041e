// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinematch/internal/api"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/history"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/supervisor"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
	"github.com/tomtom215/cinematch/internal/tmdb"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.LoggerConfig())
	logging.Info().Msg("Starting Cinematch with supervisor tree")

	logging.Info().
		Str("tmdb_base_url", cfg.TMDb.BaseURL).
		Str("db_path", cfg.Database.Path).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Float64("tmdb_rate_limit", cfg.TMDb.RequestsPerSecond).
		Msg("Configuration loaded")

	// History database
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := history.Open(initCtx, cfg.Database)
	cancelInit()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize history database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing history database")
		}
	}()
	logging.Info().Msg("History database initialized successfully")

	// TMDb caches
	caches, err := initCaches(&cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize metadata cache")
	}
	defer caches.Close()

	// TMDb client and ranking engine
	client, err := tmdb.NewClient(cfg.TMDb, caches.clientOptions()...)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create TMDb client")
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, client, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create ranking engine")
	}
	engineCfg := engine.Config()
	logging.Info().
		Int("default_top_k", engineCfg.Limits.DefaultTopK).
		Int("max_detail_fetches", engineCfg.Limits.MaxDetailFetches).
		Int("retry_attempts", engineCfg.Retry.Attempts).
		Msg("Ranking engine initialized")

	// Event bus
	bus := events.NewBus(cfg.Events)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	recorder := events.NewRecorder(bus, logging.WithComponent("events"))

	// HTTP API
	handler := api.NewHandler(engine, store, cfg.Recommend.Weights)
	handler.SetEventPublisher(bus)
	handler.SetUpstreamStatus(client)
	handler.SetEventCounter(recorder)

	chiMw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:         cfg.Server.CORSOrigins,
		CORSAllowedMethods:         []string{"GET", "POST", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:         []string{"Content-Type", "X-Request-ID"},
		CORSMaxAge:                 86400,
		RateLimitRequests:          cfg.Server.RateLimitReqs,
		RateLimitWindow:            cfg.Server.RateLimitWindow,
		RecommendRateLimitRequests: cfg.Server.RecommendRateLimitReqs,
		RateLimitDisabled:          cfg.Server.RateLimitDisabled,
	})
	router := api.NewRouter(handler, chiMw)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if maintainer := caches.maintainer(cfg.Cache.GCInterval); maintainer != nil {
		tree.AddDataService(caches.maintenanceService(maintainer))
		logging.Info().Dur("interval", cfg.Cache.GCInterval).Msg("Cache maintenance added to supervisor tree")
	}
	tree.AddMessagingService(services.NewRunnerService("event-recorder", recorder))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		reportUnstopped(tree)
		os.Exit(1)
	}

	reportUnstopped(tree)
	logging.Info().Msg("Cinematch stopped")
}

// reportUnstopped logs services that outlived the shutdown timeout.
func reportUnstopped(tree *supervisor.SupervisorTree) {
	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to build unstopped service report")
		return
	}
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
	}
}
