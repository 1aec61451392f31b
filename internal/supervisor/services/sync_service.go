// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package services

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/session"
)

// SyncService runs a transport session together with its pipeline
// coordinator as one supervised unit: the session feeds events, the
// coordinator consumes them, and neither is useful without the other.
type SyncService struct {
	sess        *session.Session
	coordinator ContextRunner
	name        string
}

// NewSyncService creates the client-side sync service.
func NewSyncService(sess *session.Session, coordinator ContextRunner) *SyncService {
	return &SyncService{
		sess:        sess,
		coordinator: coordinator,
		name:        "feed-sync",
	}
}

// Serve implements suture.Service. When the session exhausts its reconnect
// budget, the service returns suture.ErrDoNotRestart: the failure is
// terminal by protocol and only an external restart may try again.
func (s *SyncService) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessErr := make(chan error, 1)
	go func() {
		sessErr <- s.sess.Run(ctx)
	}()

	// The coordinator returns once the session closes its event stream or
	// the context is canceled.
	coordErr := s.coordinator.Run(ctx)

	cancel()
	err := <-sessErr

	if errors.Is(err, session.ErrRetryBudgetExhausted) {
		return suture.ErrDoNotRestart
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return coordErr
}

// String implements fmt.Stringer for supervisor logs.
func (s *SyncService) String() string {
	return s.name
}
