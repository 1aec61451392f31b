// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Command tracker runs a headless AeroTracker dashboard client. It connects
// to a feed server over WebSocket, maintains the local aircraft store, and
// runs the viewport pipeline (visibility reduction plus grid clustering),
// logging each published frame instead of rendering it.
//
// It is the reference consumer for the sync pipeline: the same session,
// store, and pipeline packages back a UI frontend, with the frame callback
// swapped for a renderer.
//
// Configuration follows the server binary: defaults, optional YAML file
// (CONFIG_PATH), then environment variables such as FEED_URL, FEED_FILTER,
// and FEED_MAX_RECONNECT_ATTEMPTS.
//
// The process exits on SIGINT/SIGTERM, or on its own once the reconnect
// budget is exhausted.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/config"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/pipeline"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/session"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/store"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/supervisor"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/supervisor/services"
)

// worldView is the startup viewport: the whole map at minimum zoom, so the
// first full sync produces a frame before any pan or zoom arrives.
var worldView = models.ViewportBounds{West: -180, South: -85, East: 180, North: 85}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("feed_url", cfg.Session.URL).
		Str("filter", cfg.Session.Filter).
		Msg("Starting AeroTracker headless client")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess := session.New(session.Config{
		URL:               cfg.Session.URL,
		Filter:            models.FilterType(cfg.Session.Filter),
		DialTimeout:       cfg.Session.DialTimeout,
		HeartbeatInterval: cfg.Session.HeartbeatInterval,
		BaseDelay:         cfg.Session.BaseDelay,
		MaxDelay:          cfg.Session.MaxDelay,
		MaxAttempts:       cfg.Session.MaxAttempts,
	})
	st := store.New(store.Config{MaxMissedBatches: cfg.Store.MaxMissedBatches})

	// A terminal status means the reconnect budget is gone; nothing is left
	// to supervise, so shut the process down.
	onStatus := func(s pipeline.Status) {
		logStatus(s)
		if s.Terminal {
			cancel()
		}
	}

	coord := pipeline.New(sess, st, logFrame, onStatus)
	coord.Tracker().Settle(worldView, 2)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddFeedService(services.NewSyncService(sess, coord))

	err = tree.Serve(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logging.Info().Msg("Tracker stopped gracefully")
	default:
		logging.Fatal().Err(err).Msg("Tracker stopped")
	}
}

func logFrame(f pipeline.Frame) {
	logging.Info().
		Int("visible", len(f.Visible)).
		Int("clusters", len(f.Clusters)).
		Int("zoom", f.Zoom).
		Str("detail", string(f.Detail)).
		Msg("frame published")
}

func logStatus(s pipeline.Status) {
	evt := logging.Info()
	if s.Degraded || s.Terminal {
		evt = logging.Warn()
	}
	evt.
		Bool("connected", s.Connected).
		Bool("degraded", s.Degraded).
		Bool("terminal", s.Terminal).
		Str("message", s.Message).
		Msg("feed status changed")
}
