//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealWriter drives actual hardware using the Linux GPIO character device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	lines map[Line]*gpiocdev.Line
}

// NewRealWriter requests every connected line in pins as an output
// driven low.
func NewRealWriter(chipName string, pins Pins) (*RealWriter, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealWriter{
		chip:  chip,
		lines: make(map[Line]*gpiocdev.Line),
	}
	for _, line := range []Line{LineUp, LineDown, LineFunc, LineLED} {
		off := pins.Offset(line)
		if off < 0 {
			continue
		}
		l, err := chip.RequestLine(off, gpiocdev.AsOutput(0))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", line, off, err)
		}
		w.lines[line] = l
	}
	return w, nil
}

// Set drives line high or low. Unconnected lines are ignored.
func (w *RealWriter) Set(line Line, high bool) error {
	l, ok := w.lines[line]
	if !ok {
		return nil
	}
	v := 0
	if high {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("set %s pin: %w", line, err)
	}
	return nil
}

// Close drives the lines low, then reconfigures them as inputs with
// pull-down (the Pi boot default) so a released line cannot hold a button
// pressed, and closes the chip.
func (w *RealWriter) Close() error {
	var errs []error

	for line, l := range w.lines {
		if err := l.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("release %s pin: %w", line, err))
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", line, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", line, err))
		}
	}
	w.lines = nil

	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		w.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
