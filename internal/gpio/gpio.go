// Package gpio drives the heater's button lines and status LED.
// The real implementation uses the Linux GPIO character device.
// The fake implementation records writes for tests.
package gpio

import "fmt"

// Line identifies one logical output line.
type Line int

const (
	LineUp   Line = iota // Temperature up button
	LineDown             // Temperature down button
	LineFunc             // Mode/function button
	LineLED              // Status LED
)

func (l Line) String() string {
	switch l {
	case LineUp:
		return "UP"
	case LineDown:
		return "DOWN"
	case LineFunc:
		return "FUNC"
	case LineLED:
		return "LED"
	}
	return fmt.Sprintf("Line(%d)", int(l))
}

// Writer drives output lines.
type Writer interface {
	// Set drives line high (true) or low (false).
	Set(line Line, high bool) error

	// Close drives all lines low and releases GPIO resources.
	Close() error
}

// Pins maps logical lines to BCM offsets. A negative offset leaves the
// line unconnected; writes to it are accepted and discarded.
type Pins struct {
	Up   int
	Down int
	Func int
	LED  int
}

// Pin definitions (BCM numbering)
const (
	DefaultPinUp   = 17 // White wire
	DefaultPinDown = 27 // Black wire
	DefaultPinFunc = 22 // Yellow wire
	DefaultPinLED  = 23
)

// DefaultPins returns the default wiring.
func DefaultPins() Pins {
	return Pins{
		Up:   DefaultPinUp,
		Down: DefaultPinDown,
		Func: DefaultPinFunc,
		LED:  DefaultPinLED,
	}
}

// Offset returns the BCM offset wired to line, or -1.
func (p Pins) Offset(line Line) int {
	switch line {
	case LineUp:
		return p.Up
	case LineDown:
		return p.Down
	case LineFunc:
		return p.Func
	case LineLED:
		return p.LED
	}
	return -1
}

// Validate reports duplicate assignments among connected lines.
func (p Pins) Validate() error {
	seen := make(map[int]Line)
	for _, line := range []Line{LineUp, LineDown, LineFunc, LineLED} {
		off := p.Offset(line)
		if off < 0 {
			continue
		}
		if prev, ok := seen[off]; ok {
			return fmt.Errorf("gpio: pin %d assigned to both %s and %s", off, prev, line)
		}
		seen[off] = line
	}
	return nil
}
