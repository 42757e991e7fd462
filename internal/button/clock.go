package button

import "time"

// Clock supplies time and blocking sleeps to the actuator.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// ManualClock is a Clock for tests: Sleep advances Now instantly.
// Not safe for concurrent use.
type ManualClock struct {
	now   time.Time
	Slept []time.Duration
}

// NewManualClock creates a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) Sleep(d time.Duration) {
	c.Slept = append(c.Slept, d)
	c.now = c.now.Add(d)
}

// Advance moves the clock forward without recording a sleep.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// TotalSlept sums every recorded sleep.
func (c *ManualClock) TotalSlept() time.Duration {
	var total time.Duration
	for _, d := range c.Slept {
		total += d
	}
	return total
}
