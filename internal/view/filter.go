// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package view

import "github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"

// Visible returns the subset of snapshot whose position lies within bounds.
// Entities without a resolvable latitude/longitude fail closed: they are
// never shown and never cause an error. Pure function of its inputs,
// recomputed fully on every bounds change.
func Visible(snapshot []models.AircraftState, bounds models.ViewportBounds) []models.AircraftState {
	out := make([]models.AircraftState, 0, len(snapshot))
	for _, ac := range snapshot {
		lat, lng, ok := ac.Position.Resolve()
		if !ok {
			continue
		}
		if bounds.Contains(lat, lng) {
			out = append(out, ac)
		}
	}
	return out
}
