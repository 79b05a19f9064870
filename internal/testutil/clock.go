package testutil

import (
	"sync"
	"time"
)

// ManualClock provides a thread-safe, hand-advanced wall clock for tests.
//
// Unlike the limiter's system clock, ManualClock only moves when told to.
// This lets window tests run on a virtual timeline: the same scenario
// produces identical timestamps on every run, with no sleeping.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current virtual time without advancing it.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the virtual time forward by d.
//
// Monotonic by convention: tests only pass positive durations.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the virtual time to t.
//
// Used when a scenario needs absolute timestamps rather than offsets.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
