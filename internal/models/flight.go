// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package models

import "time"

// FlightStatus is the lifecycle state of a tracked flight as reported by the
// upstream feed. Unknown values are carried through untouched so a newer
// server cannot break an older client.
type FlightStatus string

const (
	StatusScheduled FlightStatus = "scheduled"
	StatusActive    FlightStatus = "active"
	StatusLanded    FlightStatus = "landed"
	StatusCancelled FlightStatus = "cancelled"
	StatusDiverted  FlightStatus = "diverted"
	StatusDelayed   FlightStatus = "delayed"
)

// FilterType selects which category of traffic a client subscribes to.
type FilterType string

const (
	FilterAll        FilterType = "all"
	FilterCommercial FilterType = "commercial"
	FilterPrivate    FilterType = "private"
	FilterCargo      FilterType = "cargo"
)

// Valid reports whether f is one of the recognized filter values.
func (f FilterType) Valid() bool {
	switch f {
	case FilterAll, FilterCommercial, FilterPrivate, FilterCargo:
		return true
	}
	return false
}

// Position is one observed aircraft fix. Latitude and Longitude are pointers
// because upstream providers omit them for aircraft without a usable fix;
// such entities stay in the state store but are excluded from all spatial
// view reduction.
type Position struct {
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	AltitudeFeet   float64   `json:"altitudeFeet,omitempty"`
	HeadingDegrees float64   `json:"headingDegrees,omitempty"`
	GroundSpeed    float64   `json:"groundSpeed,omitempty"`
	VerticalSpeed  *float64  `json:"verticalSpeed,omitempty"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
}

// Resolve returns the latitude/longitude pair and whether both are present.
func (p Position) Resolve() (lat, lng float64, ok bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return 0, 0, false
	}
	return *p.Latitude, *p.Longitude, true
}

// AirportRef identifies a departure or arrival airport on a flight's route.
type AirportRef struct {
	ICAO      string     `json:"icao,omitempty"`
	IATA      string     `json:"iata,omitempty"`
	Name      string     `json:"name,omitempty"`
	Scheduled *time.Time `json:"scheduled,omitempty"`
	Estimated *time.Time `json:"estimated,omitempty"`
}

// AircraftState is the normalized per-aircraft record tracked client-side.
// The server-side provider proxy is responsible for producing this shape;
// the client never parses provider-specific formats.
type AircraftState struct {
	ID        string       `json:"id"`
	Callsign  string       `json:"callsign,omitempty"`
	Category  FilterType   `json:"category,omitempty"`
	Position  Position     `json:"position"`
	Status    FlightStatus `json:"status,omitempty"`
	Departure *AirportRef  `json:"departure,omitempty"`
	Arrival   *AirportRef  `json:"arrival,omitempty"`
}

// Batch is one incoming update containing zero or more aircraft records.
type Batch []AircraftState
