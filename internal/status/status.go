// Package status provides a thread-safe status tracker for the heater-remote daemon.
// It is written by the run loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	average "github.com/RobinUS2/golang-moving-average"
	"github.com/sweeney/heater-remote/internal/heater"
)

// pressWindow is the number of presses averaged for the pulse width.
const pressWindow = 50

// Config contains daemon configuration for display.
type Config struct {
	Device            string
	PollMs            int64
	ClickMs           int64
	SpacingMs         int64
	PublishIntervalMs int64
	MinTemp           int
	MaxTemp           int
	InitialTemp       int
	Broker            string
	TopicSet          string
	TopicGet          string
	TopicSystem       string
	HTTPAddr          string
}

// PressCounts tracks presses per button since startup.
type PressCounts struct {
	Up   int
	Down int
	Func int
}

// MessageCounts tracks inbound control messages since startup.
type MessageCounts struct {
	Accepted int
	Rejected int
	Dropped  int64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Phase         heater.Phase
	Heater        heater.State
	Presses       PressCounts
	AvgPressMs    float64
	Messages      MessageCounts
	LastPublish   time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Converged reports whether the believed setpoint has reached the target.
func (s Snapshot) Converged() bool {
	return s.Heater.Current == s.Heater.Target
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu       sync.RWMutex
	snap     Snapshot
	pressAvg *average.MovingAverage
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Phase:     heater.PhaseBooting,
			StartTime: startTime,
			Config:    cfg,
		},
		pressAvg: average.New(pressWindow),
	}
}

// Update sets the controller phase, heater state and last publish time.
// Called from runLoop after every pass and message.
func (t *Tracker) Update(phase heater.Phase, state heater.State, lastPublish time.Time) {
	t.mu.Lock()
	t.snap.Phase = phase
	t.snap.Heater = state
	t.snap.LastPublish = lastPublish
	t.mu.Unlock()
}

// RecordPress counts a completed press and folds its measured hold time
// into the moving average.
func (t *Tracker) RecordPress(b heater.Button, held time.Duration) {
	t.mu.Lock()
	switch b {
	case heater.ButtonUp:
		t.snap.Presses.Up++
	case heater.ButtonDown:
		t.snap.Presses.Down++
	case heater.ButtonFunc:
		t.snap.Presses.Func++
	}
	t.pressAvg.Add(float64(held) / float64(time.Millisecond))
	t.snap.AvgPressMs = t.pressAvg.Avg()
	t.mu.Unlock()
}

// RecordMessage counts an inbound control message.
func (t *Tracker) RecordMessage(accepted bool) {
	t.mu.Lock()
	if accepted {
		t.snap.Messages.Accepted++
	} else {
		t.snap.Messages.Rejected++
	}
	t.mu.Unlock()
}

// SetDropped sets the number of messages dropped by a full inbox.
func (t *Tracker) SetDropped(n int64) {
	t.mu.Lock()
	t.snap.Messages.Dropped = n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
