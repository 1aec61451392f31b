// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package wire defines the JSON protocol spoken between the live-flight feed
// server and its dashboard clients. Every message is a flat envelope tagged
// by a "type" field; unknown types must be dropped by the receiver without
// closing the connection.
package wire

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
)

// Message types exchanged over the feed connection.
const (
	// Client -> server
	TypePing      = "ping"
	TypeSetFilter = "setFilter"

	// Server -> client
	TypePong             = "pong"
	TypeConnectionStatus = "connectionStatus"
	TypeError            = "error"
	TypeFlights          = "flights"
	TypeFlightUpdate     = "flightUpdate"
)

// Connection status values carried by connectionStatus messages.
const (
	StatusOK        = "ok"
	StatusThrottled = "throttled"
)

var (
	// ErrUnknownType is returned by Decode for a well-formed envelope whose
	// type is not part of the protocol. Receivers drop such messages.
	ErrUnknownType = errors.New("wire: unknown message type")

	// ErrMissingType is returned for JSON that parses but carries no type tag.
	ErrMissingType = errors.New("wire: missing message type")
)

// Envelope is the single message shape for both directions. Fields beyond
// Type are populated according to the message type and omitted otherwise.
type Envelope struct {
	Type    string            `json:"type"`
	Filter  models.FilterType `json:"filter,omitempty"`
	Status  string            `json:"status,omitempty"`
	Message string            `json:"message,omitempty"`
	Flights models.Batch      `json:"flights,omitempty"`
	Data    models.Batch      `json:"data,omitempty"`
}

// Batch returns the aircraft payload regardless of which of the two batch
// message types carried it.
func (e Envelope) Batch() models.Batch {
	if e.Type == TypeFlightUpdate {
		return e.Data
	}
	return e.Flights
}

// IsBatch reports whether the envelope carries aircraft state.
func (e Envelope) IsBatch() bool {
	return e.Type == TypeFlights || e.Type == TypeFlightUpdate
}

// Decode parses raw bytes into an Envelope. Malformed JSON, a missing type,
// and an unrecognized type are all errors; callers log and drop, never crash.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("wire: decode: %w", err)
	}
	switch e.Type {
	case "":
		return Envelope{}, ErrMissingType
	case TypePing, TypeSetFilter, TypePong, TypeConnectionStatus, TypeError, TypeFlights, TypeFlightUpdate:
		return e, nil
	default:
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
}

// Encode marshals an envelope for the socket.
func Encode(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

// Ping builds the client heartbeat probe.
func Ping() Envelope {
	return Envelope{Type: TypePing}
}

// Pong builds the heartbeat acknowledgement.
func Pong() Envelope {
	return Envelope{Type: TypePong}
}

// SetFilter builds the subscription filter message.
func SetFilter(f models.FilterType) Envelope {
	return Envelope{Type: TypeSetFilter, Filter: f}
}

// ConnectionStatus builds a server-side degradation notice.
func ConnectionStatus(status, message string) Envelope {
	return Envelope{Type: TypeConnectionStatus, Status: status, Message: message}
}

// ServerError builds a non-fatal server error notice.
func ServerError(message string) Envelope {
	return Envelope{Type: TypeError, Message: message}
}

// FlightsMessage builds a full-snapshot batch message.
func FlightsMessage(batch models.Batch) Envelope {
	return Envelope{Type: TypeFlights, Flights: batch}
}

// FlightUpdateMessage builds an incremental batch message.
func FlightUpdateMessage(batch models.Batch) Envelope {
	return Envelope{Type: TypeFlightUpdate, Data: batch}
}
