// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package cluster

import "github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"

// ClickAction is what the view layer should do in response to a cluster click.
type ClickAction string

const (
	// ActionSelect selects a single aircraft without changing the viewport.
	ActionSelect ClickAction = "select"

	// ActionExpand toggles an expanded view showing members individually
	// without changing zoom.
	ActionExpand ClickAction = "expand"

	// ActionFitBounds animates the viewport to the padded bounding region
	// of the cluster members. This is the only click path that changes the
	// viewport, and it re-triggers the recomputation pipeline on settle.
	ActionFitBounds ClickAction = "fitBounds"
)

// fitPadding is the fraction the members' bounding region grows by before
// the viewport animates to it.
const fitPadding = 0.30

// smallClusterMax is the largest cluster treated as "select the first
// member" on click, avoiding a forced zoom for trivially small groups.
const smallClusterMax = 3

// ClickResult describes the resolved click behavior. Selected is set for
// ActionSelect; Fit is set for ActionFitBounds.
type ClickResult struct {
	Action   ClickAction
	Selected *models.AircraftState
	Fit      models.ViewportBounds
}

// Click resolves a click on a cluster at the current zoom.
//
// A cluster of count <= 3 selects its first member. A larger cluster at the
// last zoom that still clusters (one below the bypass threshold, where
// zooming further would dissolve the cluster anyway) toggles an expanded
// view. Otherwise the viewport fits the members' bounding region padded by
// 30%.
func Click(c Cluster, zoom int) ClickResult {
	if c.Count == 0 {
		return ClickResult{Action: ActionSelect}
	}
	if c.Count <= smallClusterMax {
		return ClickResult{Action: ActionSelect, Selected: &c.Members[0]}
	}
	if zoom >= BypassZoom-1 {
		return ClickResult{Action: ActionExpand}
	}

	var fit models.ViewportBounds
	seeded := false
	for _, ac := range c.Members {
		lat, lng, ok := ac.Position.Resolve()
		if !ok {
			continue
		}
		if !seeded {
			fit = models.BoundsFromPoint(lat, lng)
			seeded = true
			continue
		}
		fit.Extend(lat, lng)
	}
	return ClickResult{Action: ActionFitBounds, Fit: fit.Pad(fitPadding)}
}
