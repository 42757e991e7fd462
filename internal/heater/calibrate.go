package heater

import "time"

// Calibrator drives the heater to a known setpoint regardless of its
// physical history: enough down presses to reach the floor from anywhere
// in range, a settle delay, then up presses to Initial.
type Calibrator struct {
	presser Presser
	limits  Limits
	settle  time.Duration
	sleep   func(time.Duration)
}

// NewCalibrator creates a Calibrator. sleep is used for the settle delay
// between the down and up bursts.
func NewCalibrator(p Presser, limits Limits, settle time.Duration, sleep func(time.Duration)) *Calibrator {
	return &Calibrator{
		presser: p,
		limits:  limits,
		settle:  settle,
		sleep:   sleep,
	}
}

// Calibrate runs both bursts and leaves s.Current at Initial. It must be
// called once, before any reconciliation; a second run is not prevented.
func (c *Calibrator) Calibrate(s *State) {
	c.presser.Press(Pulse{
		Button:      ButtonDown,
		Count:       c.limits.Max - c.limits.Min,
		Calibration: true,
	})
	s.Current = c.limits.Min

	if c.settle > 0 {
		c.sleep(c.settle)
	}

	if up := c.limits.Initial - c.limits.Min; up > 0 {
		c.presser.Press(Pulse{
			Button:      ButtonUp,
			Count:       up,
			Calibration: true,
		})
	}
	s.Current = c.limits.Initial
}
