// Package heater contains the setpoint state machine for a heater that is
// only controllable through its push-buttons.
// This package has NO hardware or network dependencies: presses go through
// Presser, status payloads through Transport, and time is always injected.
package heater

import (
	"errors"
	"fmt"
)

// Button is one of the heater's physical push-buttons.
type Button string

const (
	ButtonUp   Button = "UP"
	ButtonDown Button = "DOWN"
	ButtonFunc Button = "FUNC"
)

// Pulse is a request to press a button Count times.
type Pulse struct {
	Button Button
	Count  int
	// Calibration marks presses issued by the startup calibration bursts.
	Calibration bool
}

// Presser emulates button presses. Press blocks until every pulse has
// been issued.
type Presser interface {
	Press(p Pulse)
}

// Transport delivers encoded status payloads. Delivery is best-effort.
type Transport interface {
	PublishStatus(payload []byte) error
}

// Phase is the lifecycle state of the controller.
type Phase string

const (
	PhaseBooting     Phase = "BOOTING"
	PhaseCalibrating Phase = "CALIBRATING"
	PhaseSteady      Phase = "STEADY"
)

// Limits bounds the heater's setpoint range.
type Limits struct {
	Min     int
	Max     int
	Initial int // setpoint established by calibration
}

// Defaults match the heater's own range.
const (
	DefaultMinTemp     = 5
	DefaultMaxTemp     = 35
	DefaultInitialTemp = 6
)

// DefaultLimits returns the heater's factory range.
func DefaultLimits() Limits {
	return Limits{Min: DefaultMinTemp, Max: DefaultMaxTemp, Initial: DefaultInitialTemp}
}

// ErrInvalidLimits is returned by Limits.Validate.
var ErrInvalidLimits = errors.New("heater: invalid limits")

// Validate checks Min < Max and Min <= Initial <= Max.
func (l Limits) Validate() error {
	if l.Min >= l.Max {
		return fmt.Errorf("%w: min %d must be below max %d", ErrInvalidLimits, l.Min, l.Max)
	}
	if l.Initial < l.Min || l.Initial > l.Max {
		return fmt.Errorf("%w: initial %d outside [%d, %d]", ErrInvalidLimits, l.Initial, l.Min, l.Max)
	}
	return nil
}

// Clamp bounds v to [Min, Max].
func (l Limits) Clamp(v int) int {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// State is the believed state of the heater.
type State struct {
	PowerOn bool
	// Heating is reported as-is; nothing observes the heater's element.
	Heating bool
	// Current is the believed physical setpoint.
	Current int
	// Target is the desired setpoint.
	Target int
}

// NewState returns the boot state: nothing known, target at Initial.
func NewState(l Limits) State {
	return State{Current: l.Min, Target: l.Initial}
}
