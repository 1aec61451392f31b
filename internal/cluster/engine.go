// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package cluster reduces the visible aircraft set to a bounded number of
// renderable groups using a zoom-sized grid. Clusters are ephemeral: every
// recomputation cycle replaces the prior cycle's output wholesale, and a grid
// key from one cycle has no relationship to the same key in another.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
)

// BypassZoom is the zoom level at and above which clustering is skipped and
// every visible aircraft renders individually.
const BypassZoom = 8

// Cluster is one grid-derived group of visible aircraft for the current
// recomputation cycle.
type Cluster struct {
	// Key is the grid-cell key, a deterministic function of the quantized
	// position and the zoom the cycle ran at.
	Key string `json:"key"`

	Count int `json:"count"`

	// CenterLat/CenterLng hold the running centroid, updated incrementally
	// as members are added.
	CenterLat float64 `json:"centerLat"`
	CenterLng float64 `json:"centerLng"`

	Members []models.AircraftState `json:"members"`
}

// GridSize returns the grid cell edge in degrees for a zoom level. The cell
// halves in both dimensions per zoom level, so clustering gets finer as the
// user zooms in even below the bypass threshold.
func GridSize(zoom int) float64 {
	return 2 / math.Pow(2, float64(zoom))
}

// gridKey quantizes a position onto the grid.
func gridKey(lat, lng, gridSize float64) string {
	return fmt.Sprintf("%d:%d", int(math.Floor(lat/gridSize)), int(math.Floor(lng/gridSize)))
}

// add folds one member into the cluster, updating count and the incremental
// centroid: newCenter = (oldCenter*(n-1) + p) / n.
func (c *Cluster) add(ac models.AircraftState, lat, lng float64) {
	c.Count++
	n := float64(c.Count)
	c.CenterLat = (c.CenterLat*(n-1) + lat) / n
	c.CenterLng = (c.CenterLng*(n-1) + lng) / n
	c.Members = append(c.Members, ac)
}

// Compute groups the visible set into clusters for one cycle. At or above
// BypassZoom every entity becomes a singleton cluster centered on itself.
// Entities with unresolvable positions were excluded upstream by the
// visibility filter; any that slip through are skipped, never an error.
// An empty visible set yields an empty cluster set.
//
// Clusters are returned sorted by key so downstream consumers iterate in a
// stable order.
func Compute(visible []models.AircraftState, zoom int) []Cluster {
	if zoom >= BypassZoom {
		out := make([]Cluster, 0, len(visible))
		for _, ac := range visible {
			lat, lng, ok := ac.Position.Resolve()
			if !ok {
				continue
			}
			out = append(out, Cluster{
				Key:       ac.ID,
				Count:     1,
				CenterLat: lat,
				CenterLng: lng,
				Members:   []models.AircraftState{ac},
			})
		}
		return out
	}

	gridSize := GridSize(zoom)
	cells := make(map[string]*Cluster)
	for _, ac := range visible {
		lat, lng, ok := ac.Position.Resolve()
		if !ok {
			continue
		}
		key := gridKey(lat, lng, gridSize)
		c, ok := cells[key]
		if !ok {
			c = &Cluster{Key: key}
			cells[key] = c
		}
		c.add(ac, lat, lng)
	}

	out := make([]Cluster, 0, len(cells))
	for _, c := range cells {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
