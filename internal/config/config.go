// Package config loads daemon configuration from defaults, an optional
// config file, HEATER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/sweeney/heater-remote/internal/button"
	"github.com/sweeney/heater-remote/internal/gpio"
	"github.com/sweeney/heater-remote/internal/heater"
	"github.com/sweeney/heater-remote/internal/mqtt"
	"github.com/sweeney/heater-remote/internal/status"
)

// EnvPrefix is prepended to environment variable names: mqtt.broker is
// read from HEATER_MQTT_BROKER.
const EnvPrefix = "HEATER"

// Keys.
const (
	KeyDevice          = "device"
	KeyBroker          = "mqtt.broker"
	KeyUsername        = "mqtt.username"
	KeyPassword        = "mqtt.password"
	KeyTopicSet        = "mqtt.topic_set"
	KeyTopicGet        = "mqtt.topic_get"
	KeyTopicSystem     = "mqtt.topic_system"
	KeyMinTemp         = "heater.min_temp"
	KeyMaxTemp         = "heater.max_temp"
	KeyInitialTemp     = "heater.initial_temp"
	KeyClickTime       = "button.click_time"
	KeySpacing         = "button.spacing"
	KeyBetweenUpDown   = "button.between_up_down"
	KeyPublishInterval = "publish_interval"
	KeyPoll            = "poll"
	KeyChip            = "gpio.chip"
	KeyPinUp           = "gpio.pin_up"
	KeyPinDown         = "gpio.pin_down"
	KeyPinFunc         = "gpio.pin_func"
	KeyPinLED          = "gpio.pin_led"
	KeyHTTP            = "http"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

// Defaults.
const (
	DefaultDevice          = "heater"
	DefaultBroker          = "tcp://127.0.0.1:1883"
	DefaultPublishInterval = 30 * time.Second
	DefaultPoll            = 100 * time.Millisecond
	DefaultChip            = "gpiochip0"
	DefaultHTTP            = ":8080"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete daemon configuration.
type Config struct {
	Device string
	MQTT   mqtt.Config

	Limits          heater.Limits
	Timing          button.Timing
	BetweenUpDown   time.Duration
	PublishInterval time.Duration
	Poll            time.Duration

	Chip string
	Pins gpio.Pins

	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// SetDefaults registers every default and environment binding on v.
func SetDefaults(v *viper.Viper) {
	pins := gpio.DefaultPins()
	limits := heater.DefaultLimits()

	v.SetDefault(KeyDevice, DefaultDevice)
	v.SetDefault(KeyBroker, DefaultBroker)
	v.SetDefault(KeyUsername, "")
	v.SetDefault(KeyPassword, "")
	v.SetDefault(KeyTopicSet, "")
	v.SetDefault(KeyTopicGet, "")
	v.SetDefault(KeyTopicSystem, "")
	v.SetDefault(KeyMinTemp, limits.Min)
	v.SetDefault(KeyMaxTemp, limits.Max)
	v.SetDefault(KeyInitialTemp, limits.Initial)
	v.SetDefault(KeyClickTime, button.DefaultClickTime)
	v.SetDefault(KeySpacing, button.DefaultClickSpacing)
	v.SetDefault(KeyBetweenUpDown, button.DefaultBetweenUpDown)
	v.SetDefault(KeyPublishInterval, DefaultPublishInterval)
	v.SetDefault(KeyPoll, DefaultPoll)
	v.SetDefault(KeyChip, DefaultChip)
	v.SetDefault(KeyPinUp, pins.Up)
	v.SetDefault(KeyPinDown, pins.Down)
	v.SetDefault(KeyPinFunc, pins.Func)
	v.SetDefault(KeyPinLED, pins.LED)
	v.SetDefault(KeyHTTP, DefaultHTTP)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration out of v and validates it. Empty topics
// are derived from the device name.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		Device: v.GetString(KeyDevice),
		MQTT: mqtt.Config{
			Broker:      v.GetString(KeyBroker),
			Username:    v.GetString(KeyUsername),
			Password:    v.GetString(KeyPassword),
			TopicSet:    v.GetString(KeyTopicSet),
			TopicGet:    v.GetString(KeyTopicGet),
			TopicSystem: v.GetString(KeyTopicSystem),
		},
		Limits: heater.Limits{
			Min:     v.GetInt(KeyMinTemp),
			Max:     v.GetInt(KeyMaxTemp),
			Initial: v.GetInt(KeyInitialTemp),
		},
		Timing: button.Timing{
			Click:   v.GetDuration(KeyClickTime),
			Spacing: v.GetDuration(KeySpacing),
		},
		BetweenUpDown:   v.GetDuration(KeyBetweenUpDown),
		PublishInterval: v.GetDuration(KeyPublishInterval),
		Poll:            v.GetDuration(KeyPoll),
		Chip:            v.GetString(KeyChip),
		Pins: gpio.Pins{
			Up:   v.GetInt(KeyPinUp),
			Down: v.GetInt(KeyPinDown),
			Func: v.GetInt(KeyPinFunc),
			LED:  v.GetInt(KeyPinLED),
		},
		HTTPAddr:  v.GetString(KeyHTTP),
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
	}

	c.MQTT.ClientID = c.Device
	if c.MQTT.TopicSet == "" {
		c.MQTT.TopicSet = mqtt.TopicSetFor(c.Device)
	}
	if c.MQTT.TopicGet == "" {
		c.MQTT.TopicGet = mqtt.TopicGetFor(c.Device)
	}
	if c.MQTT.TopicSystem == "" {
		c.MQTT.TopicSystem = mqtt.TopicSystemFor(c.Device)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges, durations and wiring.
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, KeyDevice)
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, KeyBroker)
	}
	if c.MQTT.TopicSet == c.MQTT.TopicGet {
		return fmt.Errorf("%w: control and status topics are both %q", ErrInvalid, c.MQTT.TopicSet)
	}
	if c.MQTT.TopicSystem == c.MQTT.TopicSet || c.MQTT.TopicSystem == c.MQTT.TopicGet {
		return fmt.Errorf("%w: system topic %q is shared with another topic", ErrInvalid, c.MQTT.TopicSystem)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	durations := []struct {
		key string
		d   time.Duration
	}{
		{KeyClickTime, c.Timing.Click},
		{KeySpacing, c.Timing.Spacing},
		{KeyPublishInterval, c.PublishInterval},
		{KeyPoll, c.Poll},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, d.key, d.d)
		}
	}
	if c.BetweenUpDown < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalid, KeyBetweenUpDown, c.BetweenUpDown)
	}

	if err := c.Pins.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// HeaterConfig returns the controller settings.
func (c Config) HeaterConfig() heater.Config {
	return heater.Config{
		Limits:          c.Limits,
		BetweenUpDown:   c.BetweenUpDown,
		PublishInterval: c.PublishInterval,
	}
}

// StatusConfig returns the settings shown on the status page.
func (c Config) StatusConfig() status.Config {
	return status.Config{
		Device:            c.Device,
		PollMs:            c.Poll.Milliseconds(),
		ClickMs:           c.Timing.Click.Milliseconds(),
		SpacingMs:         c.Timing.Spacing.Milliseconds(),
		PublishIntervalMs: c.PublishInterval.Milliseconds(),
		MinTemp:           c.Limits.Min,
		MaxTemp:           c.Limits.Max,
		InitialTemp:       c.Limits.Initial,
		Broker:            c.MQTT.Broker,
		TopicSet:          c.MQTT.TopicSet,
		TopicGet:          c.MQTT.TopicGet,
		TopicSystem:       c.MQTT.TopicSystem,
		HTTPAddr:          c.HTTPAddr,
	}
}
