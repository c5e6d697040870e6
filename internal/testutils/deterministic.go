// Package testutils provides deterministic generators, a fake language-model
// capability and bot-file fixtures for Aegis tests and --test-mode runs.
package testutils

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Epoch is the instant deterministic clocks count from.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// UUIDFunc returns uuid.NewString, or in test mode a counter-backed generator
// yielding 00000001-0000-4000-8000-000000000001, 00000002-..., and so on.
// Each call returns an independent sequence.
func UUIDFunc(testMode bool) func() string {
	if !testMode {
		return uuid.NewString
	}
	var n atomic.Uint64
	return func() string {
		id := n.Add(1)
		return fmt.Sprintf("%08x-0000-4000-8000-%012x", id, id)
	}
}

// ClockFunc returns time.Now, or in test mode a clock that ticks one second per
// call starting at Epoch plus one second.
func ClockFunc(testMode bool) func() time.Time {
	if !testMode {
		return time.Now
	}
	var ticks atomic.Int64
	return func() time.Time {
		return Epoch.Add(time.Duration(ticks.Add(1)) * time.Second)
	}
}
