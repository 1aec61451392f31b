// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package api provides HTTP routing for the feed server using the chi
// router: health probes, a REST snapshot surface, the websocket feed
// endpoint, and Prometheus metrics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/config"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/feed"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/middleware"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/store"
)

// Router wires handlers to the feed hub and the flight state store.
type Router struct {
	handler *Handler
	cfg     config.APIConfig
}

// NewRouter creates a router around the hub and store.
func NewRouter(hub *feed.Hub, st *store.Store, cfg config.APIConfig) *Router {
	return &Router{
		handler: NewHandler(hub, st),
		cfg:     cfg,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints get permissive rate limiting so monitors can poll
	// frequently without tripping the API limit.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, router.cfg.RateLimitWindow))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/stats", router.handler.Stats)
		r.Get("/flights", router.handler.Flights)
	})

	// The websocket endpoint skips the metrics wrapper: the upgrade needs
	// the raw http.ResponseWriter to hijack the connection.
	r.Route("/ws", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
		r.Get("/", router.handler.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
