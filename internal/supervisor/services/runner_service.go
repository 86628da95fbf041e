// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// ContextRunner is a component whose main loop blocks until ctx ends.
//
// Satisfied by:
//   - *cache.Maintainer
//   - *events.Recorder
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// errStoppedEarly marks a runner that returned while its context was live.
var errStoppedEarly = errors.New("stopped before shutdown")

// RunnerService wraps a ContextRunner as a supervised service.
//
//	maintainer := cache.NewMaintainer(store, 10*time.Minute, searchLRU)
//	tree.AddDataService(services.NewRunnerService("cache-maintenance", maintainer))
type RunnerService struct {
	runner    ContextRunner
	name      string
	permanent []error
}

// NewRunnerService creates a new runner service wrapper. name identifies
// the service in supervisor logs. Errors matching one of permanent stop
// the service without a restart, e.g. cache.ErrClosed.
func NewRunnerService(name string, runner ContextRunner, permanent ...error) *RunnerService {
	return &RunnerService{
		runner:    runner,
		name:      name,
		permanent: permanent,
	}
}

// Serve implements suture.Service. A runner that returns before shutdown
// is reported as failed so the supervisor restarts it.
func (s *RunnerService) Serve(ctx context.Context) error {
	err := s.runner.RunWithContext(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	for _, p := range s.permanent {
		if errors.Is(err, p) {
			return fmt.Errorf("%s: %w: %w", s.name, suture.ErrDoNotRestart, err)
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return fmt.Errorf("%s: %w", s.name, errStoppedEarly)
}

// String implements fmt.Stringer for supervisor logs.
func (s *RunnerService) String() string {
	return s.name
}
