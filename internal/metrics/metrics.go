// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package metrics provides Prometheus instrumentation for the feed server
// and the client synchronization pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed server metrics
	FeedClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_clients_connected",
			Help: "Current number of connected websocket clients",
		},
	)

	FeedBatchesBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_batches_broadcast_total",
			Help: "Total number of flight batches broadcast to clients",
		},
		[]string{"type"}, // "flights", "flightUpdate"
	)

	FeedBroadcastDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_broadcast_drops_total",
			Help: "Total number of messages dropped because a client send buffer was full",
		},
	)

	FeedThrottleEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_throttle_events_total",
			Help: "Total number of connectionStatus throttle notices emitted",
		},
	)

	// Transport session metrics
	SessionConnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_connects_total",
			Help: "Total number of successful transport session opens",
		},
	)

	SessionReconnectAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_reconnect_attempts_total",
			Help: "Total number of reconnect attempts scheduled",
		},
	)

	SessionTerminalFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_terminal_failures_total",
			Help: "Total number of sessions that exhausted their retry budget",
		},
	)

	SessionMalformedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_malformed_messages_total",
			Help: "Total number of undecodable feed messages dropped",
		},
	)

	// Flight state store metrics
	StoreBatchesMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_batches_merged_total",
			Help: "Total number of batches merged into the flight state store",
		},
	)

	StoreEntities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_entities",
			Help: "Current number of aircraft tracked in the flight state store",
		},
	)

	// View reduction metrics
	ClusterRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cluster_recompute_duration_seconds",
			Help:    "Duration of one visibility filter + clustering cycle",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	ClustersProduced = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusters_produced",
			Help: "Number of clusters produced by the most recent recomputation cycle",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecompute records one view-reduction cycle.
func RecordRecompute(clusters int, duration time.Duration) {
	ClustersProduced.Set(float64(clusters))
	ClusterRecomputeDuration.Observe(duration.Seconds())
}
