// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package session

import (
	"math"
	"time"
)

// Backoff returns the reconnect delay for a failure attempt, counted from 1:
// min(base * 1.5^(attempt-1), max). Deliberately unjittered so that the
// delay schedule is deterministic; attempt resets to zero only on a
// successful open.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(base) * math.Pow(1.5, float64(attempt-1)))
	if d > max || d < 0 {
		return max
	}
	return d
}
