// Command heater-remote drives a heater's push-buttons over GPIO and
// exposes its setpoint as JSON over MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/sweeney/heater-remote/internal/button"
	"github.com/sweeney/heater-remote/internal/config"
	"github.com/sweeney/heater-remote/internal/gpio"
	"github.com/sweeney/heater-remote/internal/heater"
	"github.com/sweeney/heater-remote/internal/logging"
	"github.com/sweeney/heater-remote/internal/mqtt"
	"github.com/sweeney/heater-remote/internal/status"
	"github.com/sweeney/heater-remote/internal/web"
)

// inboxCapacity bounds the control messages queued while a press burst
// blocks the loop. A full calibration takes about 50s.
const inboxCapacity = 64

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	log     logr.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logr.Discard()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:               "heater-remote",
		Short:             "Operate a heater's buttons from MQTT",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.init() },
		RunE:              func(*cobra.Command, []string) error { return a.run() },
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	bindFlags(a.v, root.PersistentFlags())
	root.AddCommand(newPressCmd(a))
	return root
}

func bindFlags(v *viper.Viper, f *pflag.FlagSet) {
	pins := gpio.DefaultPins()
	limits := heater.DefaultLimits()

	f.String("device", config.DefaultDevice, "device name, used as MQTT client id and topic suffix")
	f.String("broker", config.DefaultBroker, "MQTT broker address")
	f.String("username", "", "MQTT username")
	f.String("password", "", "MQTT password")
	f.String("topic-set", "", "control topic (default set/<device>)")
	f.String("topic-get", "", "status topic (default get/<device>)")
	f.String("topic-system", "", "retained lifecycle topic (default get/<device>/system)")
	f.Int("min-temp", limits.Min, "lowest heater setpoint")
	f.Int("max-temp", limits.Max, "highest heater setpoint")
	f.Int("initial-temp", limits.Initial, "setpoint after calibration")
	f.Duration("click-time", button.DefaultClickTime, "button hold time per press")
	f.Duration("spacing", button.DefaultClickSpacing, "minimum time between presses")
	f.Duration("between-up-down", button.DefaultBetweenUpDown, "pause between the calibration bursts")
	f.Duration("publish-interval", config.DefaultPublishInterval, "periodic status interval")
	f.Duration("poll", config.DefaultPoll, "polling pass interval")
	f.String("chip", config.DefaultChip, "GPIO character device")
	f.Int("pin-up", pins.Up, "BCM pin for the up button (-1 to disable)")
	f.Int("pin-down", pins.Down, "BCM pin for the down button (-1 to disable)")
	f.Int("pin-func", pins.Func, "BCM pin for the function button (-1 to disable)")
	f.Int("pin-led", pins.LED, "BCM pin for the status LED (-1 to disable)")
	f.String("http", config.DefaultHTTP, "HTTP status address (empty to disable)")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("log-format", logging.FormatAuto, "log format: auto, console or json")

	keys := map[string]string{
		"device":           config.KeyDevice,
		"broker":           config.KeyBroker,
		"username":         config.KeyUsername,
		"password":         config.KeyPassword,
		"topic-set":        config.KeyTopicSet,
		"topic-get":        config.KeyTopicGet,
		"topic-system":     config.KeyTopicSystem,
		"min-temp":         config.KeyMinTemp,
		"max-temp":         config.KeyMaxTemp,
		"initial-temp":     config.KeyInitialTemp,
		"click-time":       config.KeyClickTime,
		"spacing":          config.KeySpacing,
		"between-up-down":  config.KeyBetweenUpDown,
		"publish-interval": config.KeyPublishInterval,
		"poll":             config.KeyPoll,
		"chip":             config.KeyChip,
		"pin-up":           config.KeyPinUp,
		"pin-down":         config.KeyPinDown,
		"pin-func":         config.KeyPinFunc,
		"pin-led":          config.KeyPinLED,
		"http":             config.KeyHTTP,
		"log-level":        config.KeyLogLevel,
		"log-format":       config.KeyLogFormat,
	}
	for name, key := range keys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func (a *app) init() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) run() error {
	cfg, log := a.cfg, a.log

	writer, err := gpio.NewRealWriter(cfg.Chip, cfg.Pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Error(err, "release gpio lines")
		}
	}()

	tracker := status.NewTracker(time.Now(), cfg.StatusConfig())

	actuator := button.New(writer, cfg.Timing, button.SystemClock{}, log.WithName("button"))
	actuator.OnPress(tracker.RecordPress)

	inbox := mqtt.NewInbox(inboxCapacity, log.WithName("mqtt"))
	client, err := mqtt.NewRealClient(cfg.MQTT, inbox.Deliver, log.WithName("mqtt"))
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	ctrl := heater.NewController(cfg.HeaterConfig(), actuator, client, time.Sleep, log.WithName("heater"))

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error(err, "http server")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTPAddr)
	}

	// Registered before calibration so a signal during the bursts is
	// handled as soon as the loop starts.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	tracker.SetMQTTConnected(client.IsConnected())
	tracker.Update(heater.PhaseCalibrating, ctrl.State(), time.Time{})
	ctrl.Calibrate()
	tracker.Update(ctrl.Phase(), ctrl.State(), ctrl.LastPublished())
	publishLifecycle(client, tracker, time.Now(), mqtt.EventStartup, "", log)

	log.Info("started", "device", cfg.Device, "broker", cfg.MQTT.Broker,
		"topicSet", cfg.MQTT.TopicSet, "topicGet", cfg.MQTT.TopicGet, "topicSystem", cfg.MQTT.TopicSystem,
		"poll", cfg.Poll, "publishInterval", cfg.PublishInterval)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	return runLoop(ctrl, inbox, cfg.MQTT.TopicSet, tracker, client, time.Now, ticker.C, sigCh, log)
}

// runLoop is the only goroutine touching ctrl. Messages and polling
// passes are serialized; a press burst delays both. A signal publishes the
// retained SHUTDOWN event and returns.
func runLoop(ctrl *heater.Controller, inbox *mqtt.Inbox, topicSet string, tracker *status.Tracker, client mqtt.Client, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, log logr.Logger) error {
	for {
		select {
		case s := <-sig:
			reason := signalName(s)
			log.Info("shutting down", "signal", reason)
			publishLifecycle(client, tracker, now(), mqtt.EventShutdown, reason, log)
			return nil

		case msg := <-inbox.C():
			if msg.Topic != topicSet {
				log.Info("ignoring message on unknown topic", "topic", msg.Topic)
				continue
			}
			err := ctrl.HandleMessage(now(), msg.Payload)
			if tracker != nil {
				tracker.RecordMessage(err == nil)
			}

		case <-tick:
			ctrl.Poll(now)
		}

		if tracker != nil {
			tracker.Update(ctrl.Phase(), ctrl.State(), ctrl.LastPublished())
			tracker.SetDropped(inbox.Dropped())
			tracker.SetMQTTConnected(client.IsConnected())
		}
	}
}

// publishLifecycle sends a retained lifecycle event carrying the tracker
// snapshot. Failures are logged only.
func publishLifecycle(client mqtt.Client, tracker *status.Tracker, at time.Time, event, reason string, log logr.Logger) {
	ev := mqtt.SystemEvent{
		Timestamp: at,
		Event:     event,
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		tracker.SetMQTTConnected(client.IsConnected())
		ev.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}

	if err := client.PublishSystem(ev); err != nil {
		log.Error(err, "lifecycle publish failed", "event", event)
		return
	}
	log.Info("published lifecycle event", "event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
