// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Command server runs the AeroTracker feed server: a WebSocket fan-out hub
// for live aircraft state plus a small REST surface for snapshots and
// health checks.
//
// Architecture:
//
//   - A suture supervisor tree owns every long-running component. The feed
//     layer supervises the broadcast hub and (optionally) the synthetic
//     ingest source; the API layer supervises the HTTP server.
//   - The hub delivers full flight snapshots and incremental updates to
//     connected dashboard clients, tailoring each message to the client's
//     category filter and throttling incremental fan-out under load.
//   - The Chi router exposes /api/v1 (health, stats, flight snapshots),
//     /ws for the live feed, and /metrics for Prometheus.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (CONFIG_PATH or ./config.yaml), then environment variables such as
// HTTP_PORT, FEED_BROADCAST_RATE, INGEST_AIRCRAFT, and LOG_LEVEL. See
// internal/config for the full set.
//
// SIGINT or SIGTERM triggers a graceful shutdown: the supervisor tree stops
// the ingest, closes every WebSocket client, and drains the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/api"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/config"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/feed"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/store"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/supervisor"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors surface through the default logger; Init has not run.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Bool("ingest_enabled", cfg.Feed.IngestEnabled).
		Float64("broadcast_rate", cfg.Feed.BroadcastRate).
		Msg("Starting AeroTracker feed server")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	st := store.New(store.Config{MaxMissedBatches: cfg.Store.MaxMissedBatches})
	hub := feed.NewHub(feed.HubConfig{
		BroadcastRate:  cfg.Feed.BroadcastRate,
		BroadcastBurst: cfg.Feed.BroadcastBurst,
	})
	tree.AddFeedService(services.NewRunnerService("feed-hub", hub))

	if cfg.Feed.IngestEnabled {
		in := feed.NewIngest(feed.IngestConfig{
			Aircraft:         cfg.Feed.IngestAircraft,
			UpdateInterval:   cfg.Feed.UpdateInterval,
			FullSyncInterval: cfg.Feed.FullSyncInterval,
			Seed:             cfg.Feed.IngestSeed,
		}, hub)
		in.MirrorTo(st)
		tree.AddFeedService(services.NewRunnerService("ingest", in))
		logging.Info().Int("aircraft", cfg.Feed.IngestAircraft).Msg("Synthetic ingest enabled")
	}

	router := api.NewRouter(hub, st, cfg.API)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Feed server stopped gracefully")
}
