// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func ptr(v float64) *float64 { return &v }

func TestFilterTypeValid(t *testing.T) {
	tests := []struct {
		filter FilterType
		want   bool
	}{
		{FilterAll, true},
		{FilterCommercial, true},
		{FilterPrivate, true},
		{FilterCargo, true},
		{FilterType("military"), false},
		{FilterType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			if got := tt.filter.Valid(); got != tt.want {
				t.Errorf("FilterType(%q).Valid() = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestPositionResolve(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		ok   bool
	}{
		{"both coordinates", Position{Latitude: ptr(10), Longitude: ptr(20)}, true},
		{"missing latitude", Position{Longitude: ptr(20)}, false},
		{"missing longitude", Position{Latitude: ptr(10)}, false},
		{"missing both", Position{}, false},
		{"zero island is resolvable", Position{Latitude: ptr(0), Longitude: ptr(0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lng, ok := tt.pos.Resolve()
			if ok != tt.ok {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.ok)
			}
			if ok && (lat != *tt.pos.Latitude || lng != *tt.pos.Longitude) {
				t.Errorf("Resolve() = (%v, %v), want (%v, %v)", lat, lng, *tt.pos.Latitude, *tt.pos.Longitude)
			}
		})
	}
}

func TestAircraftStateJSONOmitsAbsentCoordinates(t *testing.T) {
	data, err := json.Marshal(AircraftState{ID: "A1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded AircraftState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Position.Latitude != nil || decoded.Position.Longitude != nil {
		t.Error("expected absent coordinates to round-trip as nil")
	}
}

func TestViewportBoundsContains(t *testing.T) {
	tests := []struct {
		name     string
		bounds   ViewportBounds
		lat, lng float64
		want     bool
	}{
		{"inside", ViewportBounds{West: 0, South: 0, East: 20, North: 20}, 10, 10, true},
		{"outside north", ViewportBounds{West: 0, South: 0, East: 20, North: 20}, 50, 10, false},
		{"outside east", ViewportBounds{West: 0, South: 0, East: 20, North: 20}, 10, 50, false},
		{"west edge", ViewportBounds{West: 0, South: 0, East: 20, North: 20}, 10, 0, true},
		{"north edge", ViewportBounds{West: 0, South: 0, East: 20, North: 20}, 20, 10, true},
		{"antimeridian wrap east side", ViewportBounds{West: 170, South: -10, East: -170, North: 10}, 0, 175, true},
		{"antimeridian wrap west side", ViewportBounds{West: 170, South: -10, East: -170, North: 10}, 0, -175, true},
		{"antimeridian wrap excluded", ViewportBounds{West: 170, South: -10, East: -170, North: 10}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bounds.Contains(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestBoundsExtendAndPad(t *testing.T) {
	b := BoundsFromPoint(10, 10)
	b.Extend(20, 30)
	b.Extend(5, -5)

	want := ViewportBounds{West: -5, South: 5, East: 30, North: 20}
	if b != want {
		t.Fatalf("after Extend: %+v, want %+v", b, want)
	}

	padded := b.Pad(0.3)
	// Width 35, height 15: pads of 10.5 and 4.5 on each side.
	wantPadded := ViewportBounds{West: -15.5, South: 0.5, East: 40.5, North: 24.5}
	if padded != wantPadded {
		t.Errorf("after Pad(0.3): %+v, want %+v", padded, wantPadded)
	}
}
