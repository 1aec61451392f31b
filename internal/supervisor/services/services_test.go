// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/pipeline"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/session"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/store"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

// stubRunner counts invocations and blocks until canceled.
type stubRunner struct {
	started chan struct{}
}

func (s *stubRunner) Run(ctx context.Context) error {
	close(s.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerServiceDelegates(t *testing.T) {
	stub := &stubRunner{started: make(chan struct{})}
	svc := NewRunnerService("test-runner", stub)

	if svc.String() != "test-runner" {
		t.Errorf("String() = %q, want test-runner", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-stub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("runner never started")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

// stubHTTPServer implements HTTPServer without binding a port.
type stubHTTPServer struct {
	listenErr  error
	closed     chan struct{}
	shutdownIn time.Duration
}

func (s *stubHTTPServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.closed
	return http.ErrServerClosed
}

func (s *stubHTTPServer) Shutdown(ctx context.Context) error {
	time.Sleep(s.shutdownIn)
	close(s.closed)
	return nil
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	srv := &stubHTTPServer{closed: make(chan struct{})}
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	srv := &stubHTTPServer{listenErr: errors.New("address in use")}
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve returned %v, want wrapped listen error", err)
	}
}

func TestSyncServiceTerminalFailureStopsRestarts(t *testing.T) {
	// Nothing listens on port 1; the session burns its whole retry budget
	// and the service must tell suture to leave it stopped.
	sess := session.New(session.Config{
		URL:               "ws://127.0.0.1:1/ws",
		Filter:            models.FilterAll,
		DialTimeout:       100 * time.Millisecond,
		HeartbeatInterval: time.Second,
		BaseDelay:         time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		MaxAttempts:       2,
	})
	coord := pipeline.New(sess, store.New(store.Config{}), nil, nil)
	svc := NewSyncService(sess, coord)

	done := make(chan error, 1)
	go func() { done <- svc.Serve(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve returned %v, want suture.ErrDoNotRestart", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after budget exhaustion")
	}
}

func TestSyncServiceCancel(t *testing.T) {
	sess := session.New(session.Config{
		URL:               "ws://127.0.0.1:1/ws",
		Filter:            models.FilterAll,
		DialTimeout:       100 * time.Millisecond,
		HeartbeatInterval: time.Second,
		BaseDelay:         50 * time.Millisecond,
		MaxDelay:          time.Second,
		MaxAttempts:       1000,
	})
	coord := pipeline.New(sess, store.New(store.Config{}), nil, nil)
	svc := NewSyncService(sess, coord)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want nil or context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
