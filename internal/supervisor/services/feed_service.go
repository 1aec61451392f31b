// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package services wraps AeroTracker components as suture services. Each
// wrapper adapts a component's run loop to the suture.Service contract and
// names it for supervisor logs.
package services

import (
	"context"
)

// ContextRunner matches any component with a context-aware run loop:
// the feed hub, the synthetic ingest, and the pipeline coordinator all
// satisfy it.
type ContextRunner interface {
	Run(ctx context.Context) error
}

// RunnerService wraps a ContextRunner as a supervised service.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService creates a service wrapper with the given name for logs.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// Serve implements suture.Service by delegating to the component's run
// loop, which returns ctx.Err() on graceful shutdown.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.Run(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (s *RunnerService) String() string {
	return s.name
}
