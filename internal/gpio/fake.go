package gpio

// FakeWriter is a test double that records every write.
type FakeWriter struct {
	// Writes contains every Set call in order, including failed ones.
	Writes []Write

	// Levels holds the last level written to each line.
	Levels map[Line]bool

	// SetError, if set, will be returned by Set. The write is still recorded.
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// Write is one recorded Set call.
type Write struct {
	Line Line
	High bool
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{Levels: make(map[Line]bool)}
}

// Set records the write.
func (f *FakeWriter) Set(line Line, high bool) error {
	f.Writes = append(f.Writes, Write{Line: line, High: high})
	if f.SetError != nil {
		return f.SetError
	}
	f.Levels[line] = high
	return nil
}

// Close drives all lines low and marks the writer as closed.
func (f *FakeWriter) Close() error {
	for line := range f.Levels {
		f.Levels[line] = false
	}
	f.Closed = true
	return nil
}

// Pulses counts rising edges written to line.
func (f *FakeWriter) Pulses(line Line) int {
	n := 0
	for _, w := range f.Writes {
		if w.Line == line && w.High {
			n++
		}
	}
	return n
}

// Reset clears recorded writes.
func (f *FakeWriter) Reset() {
	f.Writes = nil
	f.Levels = make(map[Line]bool)
	f.SetError = nil
	f.Closed = false
}
