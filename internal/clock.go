package internal

import "time"

// Clock returns monotonic time elapsed since an arbitrary anchor.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct {
	// holds the monotonic reading, read-only after construction
	anchor time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{anchor: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.anchor)
}

// FakeClock only moves when told to, or by Step on every read.
type FakeClock struct {
	now  time.Duration
	step time.Duration
}

func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

func (c *FakeClock) Now() time.Duration {
	now := c.now
	c.now += c.step
	return now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now += d
}

// SetStep makes every subsequent read advance the clock by d.
func (c *FakeClock) SetStep(d time.Duration) {
	c.step = d
}

// Peek returns the current time without stepping.
func (c *FakeClock) Peek() time.Duration {
	return c.now
}
