// Package mqtt carries heater control messages and status reports over
// MQTT, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
)

// Config contains broker connection parameters and topics.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	// TopicSet receives inbound control messages.
	TopicSet string
	// TopicGet receives outbound status reports.
	TopicGet string
	// TopicSystem receives retained lifecycle events and the will.
	TopicSystem string
	// ConnectTimeout bounds the initial connect; zero means 10s.
	ConnectTimeout time.Duration
}

// TopicSetFor returns the default control topic for a device.
func TopicSetFor(device string) string {
	return "set/" + device
}

// TopicGetFor returns the default status topic for a device.
func TopicGetFor(device string) string {
	return "get/" + device
}

// TopicSystemFor returns the default lifecycle topic for a device.
func TopicSystemFor(device string) string {
	return TopicGetFor(device) + "/system"
}

// ErrNotConnected is returned by PublishStatus while the broker is
// unreachable.
var ErrNotConnected = errors.New("mqtt: client not connected")

// ErrConnectTimeout is returned by NewRealClient when the broker does not
// accept the connection in time.
var ErrConnectTimeout = errors.New("mqtt: connect timeout")

// Message is one inbound MQTT message.
type Message struct {
	Topic   string
	Payload []byte
}

// Lifecycle event names.
const (
	EventStartup  = "STARTUP"
	EventShutdown = "SHUTDOWN"
	// EventOffline is the will, sent by the broker when the connection
	// drops without a clean shutdown.
	EventOffline = "OFFLINE"
)

// SystemEvent is a lifecycle event for the system topic.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // STARTUP, SHUTDOWN, OFFLINE
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted JSON; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// SystemPayload is the plain lifecycle payload, used for the will which
// cannot carry a status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
// A zero timestamp is omitted.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{Event: event.Event, Reason: event.Reason}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// SystemPublisher publishes lifecycle events.
type SystemPublisher interface {
	PublishSystem(event SystemEvent) error
}

// Client publishes heater status and lifecycle events.
type Client interface {
	// PublishStatus sends a status payload to the status topic.
	// Returns error if publishing fails (should not crash the process).
	PublishStatus(payload []byte) error

	SystemPublisher
	ConnectionStatus

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Inbox hands messages from the MQTT client's goroutine to the run loop.
// Deliver never blocks: while the loop is busy pressing buttons messages
// queue up to the inbox capacity and further ones are dropped.
type Inbox struct {
	ch      chan Message
	dropped atomic.Int64
	log     logr.Logger
}

// NewInbox creates an Inbox holding up to capacity pending messages.
func NewInbox(capacity int, log logr.Logger) *Inbox {
	return &Inbox{
		ch:  make(chan Message, capacity),
		log: log,
	}
}

// Deliver queues msg, dropping it if the inbox is full. Safe for
// concurrent use.
func (in *Inbox) Deliver(msg Message) {
	select {
	case in.ch <- msg:
	default:
		in.dropped.Add(1)
		in.log.Info("inbox full, dropping message", "topic", msg.Topic, "capacity", cap(in.ch))
	}
}

// C returns the channel the run loop receives from.
func (in *Inbox) C() <-chan Message {
	return in.ch
}

// Dropped returns how many messages were dropped since creation.
func (in *Inbox) Dropped() int64 {
	return in.dropped.Load()
}
