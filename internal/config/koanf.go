// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aerotracker/config.yaml",
	"/etc/aerotracker/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML (CONFIG_PATH or the default search paths)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// FEED_URL -> session.url, HTTP_PORT -> server.port, and so on.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths parse as comma-separated
// slices when supplied via environment variables.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings; the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Only variables in the table are recognized; everything else is ignored so
// unrelated process environment cannot leak into the configuration.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		// Client session
		"FEED_URL":                   "session.url",
		"FEED_FILTER":                "session.filter",
		"FEED_DIAL_TIMEOUT":          "session.dial_timeout",
		"FEED_HEARTBEAT_INTERVAL":    "session.heartbeat_interval",
		"FEED_BACKOFF_BASE_DELAY":    "session.base_delay",
		"FEED_BACKOFF_MAX_DELAY":     "session.max_delay",
		"FEED_MAX_RECONNECT_ATTEMPTS": "session.max_attempts",

		// Flight state store
		"STORE_MAX_MISSED_BATCHES": "store.max_missed_batches",

		// View reduction
		"CLUSTER_BYPASS_ZOOM": "cluster.bypass_zoom",

		// Feed server
		"FEED_BROADCAST_RATE":     "feed.broadcast_rate",
		"FEED_BROADCAST_BURST":    "feed.broadcast_burst",
		"INGEST_ENABLED":          "feed.ingest_enabled",
		"INGEST_AIRCRAFT":         "feed.ingest_aircraft",
		"INGEST_UPDATE_INTERVAL":  "feed.update_interval",
		"INGEST_FULL_SYNC_INTERVAL": "feed.full_sync_interval",
		"INGEST_SEED":             "feed.ingest_seed",

		// HTTP server
		"HTTP_HOST":    "server.host",
		"HTTP_PORT":    "server.port",
		"HTTP_TIMEOUT": "server.timeout",

		// API
		"API_RATE_LIMIT_REQS":   "api.rate_limit_reqs",
		"API_RATE_LIMIT_WINDOW": "api.rate_limit_window",
		"CORS_ORIGINS":          "api.cors_origins",

		// Logging
		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",
	}

	if path, ok := envMappings[strings.ToUpper(key)]; ok {
		return path
	}
	return ""
}
