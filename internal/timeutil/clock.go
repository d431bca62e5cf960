// Package timeutil provides a testable abstraction over wall-clock reads.
package timeutil

import (
	"sync"
	"time"
)

// Clock reads the current time. The batch runner measures elapsed time
// through it so tests can pin the reported duration.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// MockClock only moves when told to. Safe for concurrent use, so workers
// may advance it while the runner reads it.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMockClock returns a MockClock reading start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{current: start}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	t := c.current
	c.mu.Unlock()
	return t
}

func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Set jumps to t, backwards if need be.
func (c *MockClock) Set(t time.Time) {
	c.update(func(time.Time) time.Time { return t })
}

// Advance moves forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.update(func(cur time.Time) time.Time { return cur.Add(d) })
}

func (c *MockClock) update(fn func(time.Time) time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = fn(c.current)
}
