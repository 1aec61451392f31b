// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package feed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/store"
)

// IngestConfig tunes the synthetic flight source.
type IngestConfig struct {
	// Aircraft is the size of the simulated fleet.
	Aircraft int

	// UpdateInterval is the spacing between incremental batches.
	UpdateInterval time.Duration

	// FullSyncInterval is the spacing between full snapshots. Full syncs
	// also run once at startup so late-joining pipelines converge.
	FullSyncInterval time.Duration

	// Seed fixes the fleet layout for reproducible runs; zero seeds from
	// the clock.
	Seed int64
}

// Ingest synthesizes a moving fleet and publishes it through the hub. It
// stands in for an upstream ADS-B aggregator during development and demos.
type Ingest struct {
	cfg    IngestConfig
	hub    *Hub
	mirror *store.Store
	rng    *rand.Rand
	fleet  []simAircraft
}

type simAircraft struct {
	state   models.AircraftState
	heading float64 // degrees
	speed   float64 // degrees of arc per update tick
}

var categories = []models.FilterType{
	models.FilterCommercial,
	models.FilterPrivate,
	models.FilterCargo,
}

// NewIngest builds a fleet of cfg.Aircraft synthetic flights.
func NewIngest(cfg IngestConfig, hub *Hub) *Ingest {
	if cfg.Aircraft <= 0 {
		cfg.Aircraft = 50
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = 2 * time.Second
	}
	if cfg.FullSyncInterval <= 0 {
		cfg.FullSyncInterval = time.Minute
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	in := &Ingest{
		cfg: cfg,
		hub: hub,
		rng: rand.New(rand.NewSource(seed)),
	}
	in.fleet = make([]simAircraft, cfg.Aircraft)
	for i := range in.fleet {
		lat := in.rng.Float64()*160 - 80
		lng := in.rng.Float64()*360 - 180
		in.fleet[i] = simAircraft{
			state: models.AircraftState{
				ID:       fmt.Sprintf("SIM%04d", i+1),
				Callsign: fmt.Sprintf("ATK%03d", i+1),
				Category: categories[in.rng.Intn(len(categories))],
				Status:   models.StatusActive,
				Position: models.Position{Latitude: &lat, Longitude: &lng},
			},
			heading: in.rng.Float64() * 360,
			speed:   0.02 + in.rng.Float64()*0.08,
		}
	}
	return in
}

// MirrorTo keeps st in step with the batches the ingest broadcasts, so the
// REST snapshot endpoints serve the same state the feed carries. Must be
// called before Run.
func (in *Ingest) MirrorTo(st *store.Store) {
	in.mirror = st
}

// Run publishes a full sync immediately, then alternates incremental batches
// and periodic full syncs until the context is canceled.
func (in *Ingest) Run(ctx context.Context) error {
	logging.Info().
		Int("aircraft", len(in.fleet)).
		Dur("update_interval", in.cfg.UpdateInterval).
		Msg("synthetic ingest started")

	in.publishFull()

	updates := time.NewTicker(in.cfg.UpdateInterval)
	defer updates.Stop()
	syncs := time.NewTicker(in.cfg.FullSyncInterval)
	defer syncs.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("component", "ingest").Msg("synthetic ingest stopped")
			return ctx.Err()

		case <-updates.C:
			in.advance()
			batch := in.moved()
			if in.mirror != nil {
				in.mirror.Merge(batch)
			}
			in.hub.BroadcastUpdate(batch)

		case <-syncs.C:
			in.publishFull()
		}
	}
}

func (in *Ingest) publishFull() {
	batch := in.snapshot()
	if in.mirror != nil {
		in.mirror.Merge(batch)
	}
	in.hub.BroadcastFlights(batch)
}

// advance moves every aircraft one tick along its heading, drifting the
// heading slightly so tracks curve.
func (in *Ingest) advance() {
	for i := range in.fleet {
		a := &in.fleet[i]
		a.heading += in.rng.Float64()*10 - 5
		rad := a.heading * math.Pi / 180

		lat := *a.state.Position.Latitude + a.speed*math.Cos(rad)
		lng := *a.state.Position.Longitude + a.speed*math.Sin(rad)

		// Bounce off the poles, wrap the antimeridian.
		if lat > 85 || lat < -85 {
			a.heading = 180 - a.heading
			lat = math.Max(-85, math.Min(85, lat))
		}
		if lng > 180 {
			lng -= 360
		} else if lng < -180 {
			lng += 360
		}
		a.state.Position = models.Position{Latitude: &lat, Longitude: &lng}
	}
}

// moved returns the subset of the fleet to publish as an increment. A
// random slice of the fleet updates per tick, mimicking uneven receiver
// coverage upstream.
func (in *Ingest) moved() models.Batch {
	n := len(in.fleet)/4 + 1
	start := in.rng.Intn(len(in.fleet))
	batch := make(models.Batch, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, in.fleet[(start+i)%len(in.fleet)].state)
	}
	return batch
}

func (in *Ingest) snapshot() models.Batch {
	batch := make(models.Batch, len(in.fleet))
	for i, a := range in.fleet {
		batch[i] = a.state
	}
	return batch
}
