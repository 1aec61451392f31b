// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package config loads AeroTracker configuration from layered sources using
// koanf v2: built-in defaults, an optional YAML file, then environment
// variables, with later layers overriding earlier ones.
package config

import (
	"fmt"
	"time"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
)

// Config is the root configuration for both the feed server and the
// dashboard sync client.
type Config struct {
	Session SessionConfig `koanf:"session"`
	Store   StoreConfig   `koanf:"store"`
	Cluster ClusterConfig `koanf:"cluster"`
	Feed    FeedConfig    `koanf:"feed"`
	Server  ServerConfig  `koanf:"server"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// SessionConfig tunes the client transport session.
type SessionConfig struct {
	// URL is the websocket endpoint of the live feed.
	URL string `koanf:"url"`

	// Filter is the initial subscription filter.
	Filter string `koanf:"filter"`

	DialTimeout       time.Duration `koanf:"dial_timeout"`
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	// BaseDelay and MaxDelay bound the reconnect backoff ladder.
	BaseDelay time.Duration `koanf:"base_delay"`
	MaxDelay  time.Duration `koanf:"max_delay"`

	// MaxAttempts is the consecutive-failure budget before the session
	// gives up for good.
	MaxAttempts int `koanf:"max_attempts"`
}

// StoreConfig tunes the flight state store.
type StoreConfig struct {
	// MaxMissedBatches evicts an aircraft absent from this many consecutive
	// full syncs. Zero disables eviction.
	MaxMissedBatches int `koanf:"max_missed_batches"`
}

// ClusterConfig tunes view reduction.
type ClusterConfig struct {
	// BypassZoom is the zoom level at and above which aircraft render
	// individually instead of clustered.
	BypassZoom int `koanf:"bypass_zoom"`
}

// FeedConfig tunes the server-side hub and the synthetic ingest source.
type FeedConfig struct {
	// BroadcastRate is sustained incremental broadcasts per second before
	// the hub sheds updates; zero disables throttling.
	BroadcastRate  float64 `koanf:"broadcast_rate"`
	BroadcastBurst int     `koanf:"broadcast_burst"`

	IngestEnabled    bool          `koanf:"ingest_enabled"`
	IngestAircraft   int           `koanf:"ingest_aircraft"`
	UpdateInterval   time.Duration `koanf:"update_interval"`
	FullSyncInterval time.Duration `koanf:"full_sync_interval"`
	IngestSeed       int64         `koanf:"ingest_seed"`
}

// ServerConfig tunes the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig tunes the REST surface.
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig tunes zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. These load
// first and are overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			URL:               "ws://127.0.0.1:8480/ws",
			Filter:            string(models.FilterAll),
			DialTimeout:       10 * time.Second,
			HeartbeatInterval: 30 * time.Second,
			BaseDelay:         3 * time.Second,
			MaxDelay:          30 * time.Second,
			MaxAttempts:       10,
		},
		Store: StoreConfig{
			MaxMissedBatches: 0, // never evict
		},
		Cluster: ClusterConfig{
			BypassZoom: 8,
		},
		Feed: FeedConfig{
			BroadcastRate:    0, // unthrottled
			BroadcastBurst:   1,
			IngestEnabled:    true,
			IngestAircraft:   50,
			UpdateInterval:   2 * time.Second,
			FullSyncInterval: time.Minute,
			IngestSeed:       0,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8480,
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if !models.FilterType(c.Session.Filter).Valid() {
		return fmt.Errorf("session.filter: unknown filter %q", c.Session.Filter)
	}
	if c.Session.MaxAttempts < 1 {
		return fmt.Errorf("session.max_attempts must be at least 1, got %d", c.Session.MaxAttempts)
	}
	if c.Session.BaseDelay <= 0 || c.Session.MaxDelay < c.Session.BaseDelay {
		return fmt.Errorf("session backoff bounds invalid: base=%v max=%v", c.Session.BaseDelay, c.Session.MaxDelay)
	}
	if c.Store.MaxMissedBatches < 0 {
		return fmt.Errorf("store.max_missed_batches must be non-negative, got %d", c.Store.MaxMissedBatches)
	}
	if c.Cluster.BypassZoom < 0 || c.Cluster.BypassZoom > 22 {
		return fmt.Errorf("cluster.bypass_zoom must be within 0..22, got %d", c.Cluster.BypassZoom)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be within 1..65535, got %d", c.Server.Port)
	}
	if c.Feed.BroadcastRate < 0 {
		return fmt.Errorf("feed.broadcast_rate must be non-negative, got %v", c.Feed.BroadcastRate)
	}
	return nil
}
