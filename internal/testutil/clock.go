// Package testutil provides deterministic stand-ins for the pipeline's
// injectable seams: the wall clock and the run ID generator.
package testutil

import (
	"sync"
	"time"
)

// Clock is a thread-safe deterministic wall clock for tests. Every call to
// Now advances it by a fixed step, so run timestamps are reproducible and
// strictly ordered without sleeping.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int
}

// NewClock creates a clock that returns start on the first Now call and
// advances by step on each subsequent call.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{start: start, step: step}
}

// Now returns the next timestamp in the sequence.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls reports how many timestamps have been handed out.
func (c *Clock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock so the same scenario can replay with identical
// timestamps.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
