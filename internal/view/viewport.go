// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package view tracks the map viewport and reduces the flight state store to
// the subset the viewport can see. Recomputation happens once per settle
// event, after a pan or zoom gesture completes, never per intermediate frame.
package view

import (
	"sync"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
)

// DetailLevel controls whether individual aircraft or clusters are rendered.
type DetailLevel string

const (
	DetailHigh   DetailLevel = "high"
	DetailMedium DetailLevel = "medium"
	DetailLow    DetailLevel = "low"
)

// DetailLevelForZoom derives the detail level from a zoom level.
// Pure function: zoom >= 10 is high, zoom >= 7 is medium, else low.
func DetailLevelForZoom(zoom int) DetailLevel {
	switch {
	case zoom >= 10:
		return DetailHigh
	case zoom >= 7:
		return DetailMedium
	default:
		return DetailLow
	}
}

// Viewport is the authoritative visible region and zoom of the rendered map.
// Owned exclusively by the Tracker; all other components treat it as
// read-only input.
type Viewport struct {
	Bounds models.ViewportBounds
	Zoom   int
	Detail DetailLevel
}

// Tracker records viewport settle events and notifies a single observer.
type Tracker struct {
	mu       sync.Mutex
	current  Viewport
	onSettle func(Viewport)
}

// NewTracker creates a tracker. onSettle is invoked exactly once per settle
// event with the new viewport; it may be nil.
func NewTracker(onSettle func(Viewport)) *Tracker {
	return &Tracker{onSettle: onSettle}
}

// Settle updates the viewport after a pan/zoom gesture completes and
// triggers the downstream recomputation exactly once.
func (t *Tracker) Settle(bounds models.ViewportBounds, zoom int) Viewport {
	t.mu.Lock()
	t.current = Viewport{
		Bounds: bounds,
		Zoom:   zoom,
		Detail: DetailLevelForZoom(zoom),
	}
	vp := t.current
	cb := t.onSettle
	t.mu.Unlock()

	if cb != nil {
		cb(vp)
	}
	return vp
}

// Current returns the most recently settled viewport.
func (t *Tracker) Current() Viewport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
