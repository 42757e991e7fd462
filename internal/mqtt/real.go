package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-logr/logr"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealClient talks to an actual MQTT broker.
type RealClient struct {
	client paho.Client
	cfg    Config
	log    logr.Logger
}

// NewRealClient connects to the broker and subscribes to the control
// topic. Every inbound message is passed to deliver on paho's goroutine;
// deliver must not block. The subscription is renewed on every reconnect.
func NewRealClient(cfg Config, deliver func(Message), log logr.Logger) (*RealClient, error) {
	c := &RealClient{cfg: cfg, log: log}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}

	if cfg.TopicSystem != "" {
		will, err := FormatSystemPayload(SystemEvent{Event: EventOffline, Reason: "CONNECTION_LOST"})
		if err != nil {
			return nil, fmt.Errorf("format will: %w", err)
		}
		opts.SetBinaryWill(cfg.TopicSystem, will, 1, true)
	}

	opts.SetOnConnectHandler(func(client paho.Client) {
		log.Info("connected", "broker", cfg.Broker)
		token := client.Subscribe(cfg.TopicSet, 0, func(_ paho.Client, m paho.Message) {
			deliver(Message{Topic: m.Topic(), Payload: m.Payload()})
		})
		if !token.WaitTimeout(connectTimeout) {
			log.Error(nil, "subscribe timeout", "topic", cfg.TopicSet)
			return
		}
		if err := token.Error(); err != nil {
			log.Error(err, "subscribe failed", "topic", cfg.TopicSet)
			return
		}
		log.Info("subscribed", "topic", cfg.TopicSet)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Error(err, "connection lost")
	})
	opts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		log.V(1).Info("reconnecting", "broker", cfg.Broker)
	})

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = connectTimeout
	}

	// With connect retry paho keeps dialing in the background until
	// Disconnect, so every failed start must disconnect.
	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w after %v: %s", ErrConnectTimeout, timeout, cfg.Broker)
	}
	if err := token.Error(); err != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// PublishStatus sends a status payload to the status topic.
// QoS 0, not retained: there is no acknowledgement to wait for beyond
// the write to the network.
func (c *RealClient) PublishStatus(payload []byte) error {
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	token := c.client.Publish(c.cfg.TopicGet, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a lifecycle event to the system topic at QoS 1 so
// a shutdown notice survives until the broker has it.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	if c.cfg.TopicSystem == "" {
		return nil
	}
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	token := c.client.Publish(c.cfg.TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
