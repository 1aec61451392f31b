// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package session

import "github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"

// EventKind discriminates session events on the single event stream.
type EventKind string

const (
	// KindConnected is emitted exactly once per successful open.
	KindConnected EventKind = "connected"

	// KindDisconnected is emitted when the transport closes or errors while
	// the retry budget remains; the session will reconnect on its own.
	KindDisconnected EventKind = "disconnected"

	// KindBatch carries aircraft state from a flights or flightUpdate
	// message, to be merged into the flight state store.
	KindBatch EventKind = "batch"

	// KindStatus carries a server-signaled degradation notice
	// (connectionStatus). It does not close the transport.
	KindStatus EventKind = "status"

	// KindServerError carries a non-fatal server error message.
	KindServerError EventKind = "serverError"

	// KindTerminal is emitted once when the retry budget is exhausted.
	// The session stops retrying; only an external restart resumes it.
	KindTerminal EventKind = "terminal"
)

// Event is one entry on the session's event stream. Exactly one payload
// field is meaningful per kind.
type Event struct {
	Kind    EventKind
	Batch   models.Batch // KindBatch
	Status  string       // KindStatus
	Message string       // KindStatus, KindServerError
	Err     error        // KindDisconnected, KindTerminal
}

// State names the transport state machine's states.
type State string

const (
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosing    State = "closing"
	StateClosed     State = "closed"
)
