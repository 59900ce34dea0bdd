package sched

import "time"

// Clock is the simulation's notion of "now". It only moves when the game
// loop advances it, so every timer in the world is driven by simulated time.
type Clock struct {
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time { return c.now }

// Advance moves the clock forward. Negative durations are ignored.
func (c *Clock) Advance(d time.Duration) {
	if d > 0 {
		c.now = c.now.Add(d)
	}
}

// Since reports the simulated time elapsed since t.
func (c *Clock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
