// Package clock abstracts the current time so timestamps can be tested.
package clock

import "time"

// Clock reports the current time. Production code uses Real(); tests use
// Fixed() and advance it explicitly.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by time.Now in UTC.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock whose time only moves when Advance or Set is called.
// It is not safe for concurrent use.
type FixedClock struct {
	current time.Time
}

// Fixed returns a FixedClock starting at t.
func Fixed(t time.Time) *FixedClock {
	return &FixedClock{current: t.UTC()}
}

// Now returns the clock's current time.
func (c *FixedClock) Now() time.Time {
	return c.current
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// Set jumps the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.current = t.UTC()
}
