package testfixtures

import (
	"sync"
	"time"
)

// ReferenceTime is Monday 2026-10-19 08:00 UTC, the shared starting point
// for engine tests.
func ReferenceTime() time.Time {
	return time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
}

// Clock provides a controllable time source for tests.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock initialised to the supplied time. When start is the
// zero value, ReferenceTime is used.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward and returns the updated time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
