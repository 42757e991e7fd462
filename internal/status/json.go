package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Phase         string       `json:"phase"`
	PowerOn       bool         `json:"power_on"`
	Heating       bool         `json:"heating"`
	Setpoint      int          `json:"setpoint"`
	Target        int          `json:"target"`
	Converged     bool         `json:"converged"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	LastPublish   string       `json:"last_publish,omitempty"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Presses       PressesJSON  `json:"presses"`
	Messages      MessagesJSON `json:"messages"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// PressesJSON is the JSON representation of press counters.
type PressesJSON struct {
	Up         int     `json:"up"`
	Down       int     `json:"down"`
	Func       int     `json:"func"`
	AvgPressMs float64 `json:"avg_press_ms"`
}

// MessagesJSON is the JSON representation of message counters.
type MessagesJSON struct {
	Accepted int   `json:"accepted"`
	Rejected int   `json:"rejected"`
	Dropped  int64 `json:"dropped"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Device            string `json:"device"`
	PollMs            int64  `json:"poll_ms"`
	ClickMs           int64  `json:"click_ms"`
	SpacingMs         int64  `json:"spacing_ms"`
	PublishIntervalMs int64  `json:"publish_interval_ms"`
	MinTemp           int    `json:"min_temp"`
	MaxTemp           int    `json:"max_temp"`
	InitialTemp       int    `json:"initial_temp"`
	TopicSet          string `json:"topic_set"`
	TopicGet          string `json:"topic_get"`
	TopicSystem       string `json:"topic_system"`
	HTTPAddr          string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	phase := string(snap.Phase)
	if phase == "" {
		phase = "UNKNOWN"
	}

	inner := StatusInner{
		Phase:         phase,
		PowerOn:       snap.Heater.PowerOn,
		Heating:       snap.Heater.Heating,
		Setpoint:      snap.Heater.Current,
		Target:        snap.Heater.Target,
		Converged:     snap.Converged(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Presses: PressesJSON{
			Up:         snap.Presses.Up,
			Down:       snap.Presses.Down,
			Func:       snap.Presses.Func,
			AvgPressMs: snap.AvgPressMs,
		},
		Messages: MessagesJSON{
			Accepted: snap.Messages.Accepted,
			Rejected: snap.Messages.Rejected,
			Dropped:  snap.Messages.Dropped,
		},
		Config: ConfigJSON{
			Device:            snap.Config.Device,
			PollMs:            snap.Config.PollMs,
			ClickMs:           snap.Config.ClickMs,
			SpacingMs:         snap.Config.SpacingMs,
			PublishIntervalMs: snap.Config.PublishIntervalMs,
			MinTemp:           snap.Config.MinTemp,
			MaxTemp:           snap.Config.MaxTemp,
			InitialTemp:       snap.Config.InitialTemp,
			TopicSet:          snap.Config.TopicSet,
			TopicGet:          snap.Config.TopicGet,
			TopicSystem:       snap.Config.TopicSystem,
			HTTPAddr:          snap.Config.HTTPAddr,
		},
	}
	if !snap.LastPublish.IsZero() {
		inner.LastPublish = snap.LastPublish.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the indented JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for a lifecycle event
// on the system topic.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
