// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor provides process supervision for Cinematch using suture v4.

The supervisor tree manages the lifecycle of every long-running service with
automatic restart, failure isolation and graceful shutdown.

# Overview

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   └── RunnerService "cache-maintenance" (if CACHE_ENABLED)
	├── MessagingSupervisor ("messaging-layer")
	│   └── RunnerService "event-recorder"
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Ranking sessions run inside HTTP request handlers, so only the server itself
needs supervision; the background services around it may fail and restart
without affecting requests in flight.

# Usage Example

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.TreeConfig{
	    FailureThreshold: cfg.Supervisor.FailureThreshold,
	    FailureBackoff:   cfg.Supervisor.FailureBackoff,
	    ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}

	tree.AddDataService(services.NewRunnerService("cache-maintenance", maintainer))
	tree.AddMessagingService(services.NewRunnerService("event-recorder", recorder))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Restart Semantics

A service returning a non-nil error is restarted. After FailureThreshold
failures (decaying at FailureDecay per second) the supervisor backs off for
FailureBackoff. Returning suture.ErrDoNotRestart stops the service for good.
On shutdown each service gets ShutdownTimeout to return; anything still
running is listed by UnstoppedServiceReport.
*/
package supervisor
