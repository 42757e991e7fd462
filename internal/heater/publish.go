package heater

import (
	"fmt"
	"time"
)

// StatusPublisher rate-limits status payloads sent through a Transport.
type StatusPublisher struct {
	transport Transport
	interval  time.Duration
	last      time.Time
}

// NewStatusPublisher creates a publisher that sends a periodic status at
// most once per interval.
func NewStatusPublisher(t Transport, interval time.Duration) *StatusPublisher {
	return &StatusPublisher{transport: t, interval: interval}
}

// MaybePublish sends the status of s when force is set or more than the
// interval has elapsed since the last publish. A publisher that has
// never published is always due. The publish time is recorded before
// transmission, so a failed send still waits out the interval.
// Returns whether a send was attempted and the transport error, if any.
func (p *StatusPublisher) MaybePublish(now time.Time, s State, force bool, messageID *string) (bool, error) {
	if !force && !p.last.IsZero() && now.Sub(p.last) <= p.interval {
		return false, nil
	}

	p.last = now

	payload, err := Encode(s, messageID)
	if err != nil {
		return true, fmt.Errorf("encode status: %w", err)
	}
	if err := p.transport.PublishStatus(payload); err != nil {
		return true, fmt.Errorf("publish status: %w", err)
	}
	return true, nil
}

// LastPublished returns the time of the last publish attempt, or the zero
// time if none happened yet.
func (p *StatusPublisher) LastPublished() time.Time {
	return p.last
}
