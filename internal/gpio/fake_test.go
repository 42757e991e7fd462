package gpio

import (
	"errors"
	"testing"
)

func TestFakeWriterSet(t *testing.T) {
	f := NewFakeWriter()

	if err := f.Set(LineUp, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(LineUp, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(LineDown, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(f.Writes))
	}
	if f.Writes[0] != (Write{Line: LineUp, High: true}) {
		t.Errorf("write 0: got %+v", f.Writes[0])
	}
	if f.Levels[LineUp] {
		t.Error("expected UP low after release")
	}
	if !f.Levels[LineDown] {
		t.Error("expected DOWN high")
	}
}

func TestFakeWriterPulses(t *testing.T) {
	f := NewFakeWriter()
	for i := 0; i < 3; i++ {
		f.Set(LineDown, true)
		f.Set(LineDown, false)
	}
	f.Set(LineUp, true)

	if got := f.Pulses(LineDown); got != 3 {
		t.Errorf("DOWN pulses: got %d, want 3", got)
	}
	if got := f.Pulses(LineUp); got != 1 {
		t.Errorf("UP pulses: got %d, want 1", got)
	}
	if got := f.Pulses(LineFunc); got != 0 {
		t.Errorf("FUNC pulses: got %d, want 0", got)
	}
}

func TestFakeWriterError(t *testing.T) {
	f := NewFakeWriter()
	f.SetError = errors.New("line busy")

	if err := f.Set(LineUp, true); err == nil {
		t.Error("expected error")
	}
	if len(f.Writes) != 1 {
		t.Errorf("expected failed write to be recorded, got %d", len(f.Writes))
	}
	if f.Levels[LineUp] {
		t.Error("failed write should not change level")
	}
}

func TestFakeWriterClose(t *testing.T) {
	f := NewFakeWriter()
	f.Set(LineLED, true)

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
	if f.Levels[LineLED] {
		t.Error("close should drive lines low")
	}
}

func TestFakeWriterReset(t *testing.T) {
	f := NewFakeWriter()
	f.Set(LineUp, true)
	f.Close()
	f.SetError = errors.New("error")

	f.Reset()

	if len(f.Writes) != 0 {
		t.Error("writes should be cleared")
	}
	if f.Closed {
		t.Error("closed should be reset")
	}
	if f.SetError != nil {
		t.Error("error should be cleared")
	}
}

func TestPinsValidate(t *testing.T) {
	tests := []struct {
		name    string
		pins    Pins
		wantErr bool
	}{
		{"defaults", DefaultPins(), false},
		{"led disabled", Pins{Up: 1, Down: 2, Func: 3, LED: -1}, false},
		{"all disabled", Pins{Up: -1, Down: -1, Func: -1, LED: -1}, false},
		{"duplicate", Pins{Up: 5, Down: 5, Func: 3, LED: 4}, true},
		{"led clashes with func", Pins{Up: 1, Down: 2, Func: 3, LED: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pins.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLineString(t *testing.T) {
	want := map[Line]string{
		LineUp:   "UP",
		LineDown: "DOWN",
		LineFunc: "FUNC",
		LineLED:  "LED",
		Line(9):  "Line(9)",
	}
	for line, s := range want {
		if line.String() != s {
			t.Errorf("Line(%d).String(): got %q, want %q", int(line), line.String(), s)
		}
	}
}
