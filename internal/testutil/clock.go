package testutil

import (
	"sync"
	"time"
)

// ReferenceTime is the instant fixed clocks start at in tests.
var ReferenceTime = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

// FixedClock is a wall clock that only moves when told to.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock reading t. A zero t means ReferenceTime.
func NewFixedClock(t time.Time) *FixedClock {
	if t.IsZero() {
		t = ReferenceTime
	}
	return &FixedClock{now: t}
}

// Now returns the current reading.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new reading.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
