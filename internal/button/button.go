// Package button emulates push-button presses on GPIO output lines.
package button

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/sweeney/heater-remote/internal/gpio"
	"github.com/sweeney/heater-remote/internal/heater"
)

// Timing constants of the heater's buttons.
const (
	DefaultClickTime     = 200 * time.Millisecond
	DefaultClickSpacing  = 750 * time.Millisecond
	DefaultBetweenUpDown = 2 * time.Second
)

// Timing configures pulse shape.
type Timing struct {
	// Click is how long a line is held high per press.
	Click time.Duration
	// Spacing is the minimum time from the end of one press to the
	// start of the next, across all buttons.
	Spacing time.Duration
}

// DefaultTiming returns timings that the heater reliably registers.
func DefaultTiming() Timing {
	return Timing{Click: DefaultClickTime, Spacing: DefaultClickSpacing}
}

// PressFunc observes each completed press and how long the line was
// actually held.
type PressFunc func(b heater.Button, held time.Duration)

// Actuator presses heater buttons by pulsing GPIO lines. It implements
// heater.Presser. Not safe for concurrent use.
type Actuator struct {
	out     gpio.Writer
	timing  Timing
	clock   Clock
	log     logr.Logger
	last    time.Time
	onPress PressFunc
}

// New creates an Actuator writing to out.
func New(out gpio.Writer, timing Timing, clock Clock, log logr.Logger) *Actuator {
	return &Actuator{
		out:    out,
		timing: timing,
		clock:  clock,
		log:    log,
	}
}

// OnPress registers fn to be called after every press.
func (a *Actuator) OnPress(fn PressFunc) {
	a.onPress = fn
}

// Press issues p.Count pulses (at least one) on p.Button's line, blocking
// until the last line is released. Write errors are logged; the hardware
// write is treated as fire-and-forget.
func (a *Actuator) Press(p heater.Pulse) {
	line, ok := lineFor(p.Button)
	if !ok {
		a.log.Error(nil, "unknown button", "button", p.Button)
		return
	}

	count := p.Count
	if count < 1 {
		count = 1
	}

	for i := 0; i < count; i++ {
		a.waitSpacing()

		start := a.clock.Now()
		a.drive(line, true)
		a.clock.Sleep(a.timing.Click)
		a.drive(line, false)
		a.last = a.clock.Now()

		a.log.V(1).Info("button click", "button", p.Button, "calibration", p.Calibration)
		if a.onPress != nil {
			a.onPress(p.Button, a.last.Sub(start))
		}
	}
}

func (a *Actuator) waitSpacing() {
	if a.last.IsZero() {
		return
	}
	if wait := a.timing.Spacing - a.clock.Now().Sub(a.last); wait > 0 {
		a.clock.Sleep(wait)
	}
}

// drive sets the button line and the LED to the opposite level.
func (a *Actuator) drive(line gpio.Line, high bool) {
	if err := a.out.Set(gpio.LineLED, !high); err != nil {
		a.log.Error(err, "led write failed")
	}
	if err := a.out.Set(line, high); err != nil {
		a.log.Error(err, "button write failed", "line", line)
	}
}

func lineFor(b heater.Button) (gpio.Line, bool) {
	switch b {
	case heater.ButtonUp:
		return gpio.LineUp, true
	case heater.ButtonDown:
		return gpio.LineDown, true
	case heater.ButtonFunc:
		return gpio.LineFunc, true
	}
	return 0, false
}
