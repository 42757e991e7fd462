package heater

import (
	"errors"
	"time"
)

// recordingPresser records every pulse it receives.
type recordingPresser struct {
	pulses []Pulse
}

func (r *recordingPresser) Press(p Pulse) {
	r.pulses = append(r.pulses, p)
}

func (r *recordingPresser) count(b Button) int {
	n := 0
	for _, p := range r.pulses {
		if p.Button == b {
			n += p.Count
		}
	}
	return n
}

// recordingTransport records published payloads.
type recordingTransport struct {
	payloads []string
	err      error
}

func (r *recordingTransport) PublishStatus(payload []byte) error {
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, string(payload))
	return nil
}

var errBrokerDown = errors.New("broker down")

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// at returns a clock stuck at t.
func at(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// clockPresser advances a shared clock by hold per pulse, like a real
// actuator blocking on the line.
type clockPresser struct {
	now  *time.Time
	hold time.Duration
}

func (c *clockPresser) Press(p Pulse) {
	n := p.Count
	if n < 1 {
		n = 1
	}
	*c.now = c.now.Add(time.Duration(n) * c.hold)
}
