// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package store holds the authoritative client-side set of known aircraft.
//
// The store is the union of every id seen this session: a non-empty batch
// only updates or extends known entities, it never shrinks the set. Merges
// are atomic with respect to readers, so a snapshot can never observe a
// partially applied batch.
package store

import (
	"sync"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/metrics"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
)

// Config tunes store behavior.
type Config struct {
	// MaxMissedBatches evicts an entity after it has been absent from this
	// many consecutive non-empty batches. 0 disables eviction entirely;
	// the store then never removes an entity within a session.
	MaxMissedBatches int
}

// Store is a monotonically-extending map of aircraft id to state.
// It has exactly one writer (the transport session's dispatcher) and any
// number of readers; the RWMutex preserves per-batch atomic visibility.
type Store struct {
	mu       sync.RWMutex
	entities map[string]models.AircraftState
	missed   map[string]int
	cfg      Config
}

// New creates an empty store.
func New(cfg Config) *Store {
	return &Store{
		entities: make(map[string]models.AircraftState),
		missed:   make(map[string]int),
		cfg:      cfg,
	}
}

// Merge reconciles one incoming batch. Each entity with a known id replaces
// the stored record wholesale; unknown ids are inserted. Entities absent
// from the batch are retained. An empty batch is a no-op and never clears
// the store. Returns the number of records applied.
func (s *Store) Merge(batch models.Batch) int {
	if len(batch) == 0 {
		logging.Warn().Msg("ignoring empty flight batch")
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(batch))
	applied := 0
	for _, ac := range batch {
		if ac.ID == "" {
			logging.Warn().Msg("dropping aircraft record with blank id")
			continue
		}
		s.entities[ac.ID] = ac
		seen[ac.ID] = struct{}{}
		s.missed[ac.ID] = 0
		applied++
	}
	if applied == 0 {
		// Batch held only blank ids; treat like an empty batch.
		return 0
	}

	if s.cfg.MaxMissedBatches > 0 {
		s.evictStaleLocked(seen)
	}

	metrics.StoreBatchesMerged.Inc()
	metrics.StoreEntities.Set(float64(len(s.entities)))
	return applied
}

// evictStaleLocked bumps absence counters for entities not in the batch and
// evicts those past the configured threshold. Caller holds s.mu.
func (s *Store) evictStaleLocked(seen map[string]struct{}) {
	for id := range s.entities {
		if _, ok := seen[id]; ok {
			continue
		}
		s.missed[id]++
		if s.missed[id] >= s.cfg.MaxMissedBatches {
			delete(s.entities, id)
			delete(s.missed, id)
			logging.Debug().Str("aircraft_id", id).Msg("evicted stale aircraft")
		}
	}
}

// Snapshot returns a copy of all known entities. Iteration order is
// unspecified; consumers must not rely on it.
func (s *Store) Snapshot() []models.AircraftState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AircraftState, 0, len(s.entities))
	for _, ac := range s.entities {
		out = append(out, ac)
	}
	return out
}

// Get returns the entity for an id, if known.
func (s *Store) Get(id string) (models.AircraftState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ac, ok := s.entities[id]
	return ac, ok
}

// Len returns the number of tracked entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}
