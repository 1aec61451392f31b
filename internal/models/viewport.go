// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package models

// ViewportBounds represents a geographic bounding box for viewport queries.
type ViewportBounds struct {
	West  float64 `json:"west"`  // Western longitude bound
	South float64 `json:"south"` // Southern latitude bound
	East  float64 `json:"east"`  // Eastern longitude bound
	North float64 `json:"north"` // Northern latitude bound
}

// Contains reports whether the point lies within the bounds. A box whose
// West is greater than its East wraps across the antimeridian; latitude
// never wraps.
func (b ViewportBounds) Contains(lat, lng float64) bool {
	if lat < b.South || lat > b.North {
		return false
	}
	if b.West <= b.East {
		return lng >= b.West && lng <= b.East
	}
	return lng >= b.West || lng <= b.East
}

// Extend grows the bounds to include the point. The zero bounds must be
// seeded from the first point via ExtendFrom before Extend is meaningful.
func (b *ViewportBounds) Extend(lat, lng float64) {
	if lat < b.South {
		b.South = lat
	}
	if lat > b.North {
		b.North = lat
	}
	if lng < b.West {
		b.West = lng
	}
	if lng > b.East {
		b.East = lng
	}
}

// BoundsFromPoint returns a degenerate bounds containing exactly the point,
// suitable as a seed for Extend.
func BoundsFromPoint(lat, lng float64) ViewportBounds {
	return ViewportBounds{West: lng, South: lat, East: lng, North: lat}
}

// Pad grows the bounds by the given fraction of its width and height on each
// axis, preserving the center.
func (b ViewportBounds) Pad(fraction float64) ViewportBounds {
	latPad := (b.North - b.South) * fraction
	lngPad := (b.East - b.West) * fraction
	return ViewportBounds{
		West:  b.West - lngPad,
		South: b.South - latPad,
		East:  b.East + lngPad,
		North: b.North + latPad,
	}
}
