package heater

import (
	"time"

	"github.com/go-logr/logr"
)

// Config holds the controller's tunables.
type Config struct {
	Limits Limits
	// BetweenUpDown is the settle delay between calibration bursts.
	BetweenUpDown time.Duration
	// PublishInterval is the periodic status cadence.
	PublishInterval time.Duration
}

// Controller owns the heater state and runs the Booting -> Calibrating ->
// Steady lifecycle. Not safe for concurrent use: every method must be
// called from the same goroutine.
type Controller struct {
	cfg        Config
	state      State
	phase      Phase
	reconciler *Reconciler
	calibrator *Calibrator
	publisher  *StatusPublisher
	log        logr.Logger
}

// PassResult describes what one polling pass did.
type PassResult struct {
	Pressed   bool
	Button    Button
	Published bool
}

// NewController creates a controller in the Booting phase.
func NewController(cfg Config, presser Presser, transport Transport, sleep func(time.Duration), log logr.Logger) *Controller {
	return &Controller{
		cfg:        cfg,
		state:      NewState(cfg.Limits),
		phase:      PhaseBooting,
		reconciler: NewReconciler(presser),
		calibrator: NewCalibrator(presser, cfg.Limits, cfg.BetweenUpDown, sleep),
		publisher:  NewStatusPublisher(transport, cfg.PublishInterval),
		log:        log,
	}
}

// State returns a copy of the believed heater state.
func (c *Controller) State() State {
	return c.state
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// LastPublished returns the time of the last status publish attempt.
func (c *Controller) LastPublished() time.Time {
	return c.publisher.LastPublished()
}

// Calibrate runs the startup calibration and enters the Steady phase.
func (c *Controller) Calibrate() {
	c.phase = PhaseCalibrating
	c.log.Info("initial temperature configuration", "target", c.state.Target,
		"downPresses", c.cfg.Limits.Max-c.cfg.Limits.Min,
		"upPresses", c.cfg.Limits.Initial-c.cfg.Limits.Min)

	c.calibrator.Calibrate(&c.state)

	c.phase = PhaseSteady
	c.log.Info("calibration complete", "setpoint", c.state.Current)
}

// HandleMessage decodes and applies one control payload, then publishes
// the resulting status echoing the message id. A payload without a status
// object is dropped without reply and the decode error returned.
func (c *Controller) HandleMessage(now time.Time, payload []byte) error {
	cmd, err := Decode(payload)
	if err != nil {
		c.log.Error(err, "dropping control message", "payload", string(payload))
		return err
	}

	prevTarget := c.state.Target
	if c.state.Apply(cmd, c.cfg.Limits) {
		c.log.Info("power status set", "powerOn", c.state.PowerOn)
	}
	if c.state.Target != prevTarget {
		c.log.Info("target setpoint changed", "from", prevTarget, "to", c.state.Target)
	}

	c.publish(now, true, cmd.MessageID)
	return nil
}

// Poll runs one polling pass: at most one reconciliation press (Steady
// phase only), then the periodic publish check. The publish observes any
// change made by the press. now is read after the press, which blocks
// for the click and spacing time.
func (c *Controller) Poll(now func() time.Time) PassResult {
	var res PassResult

	if c.phase == PhaseSteady {
		res.Button, res.Pressed = c.reconciler.ReconcileOnce(&c.state)
		if res.Pressed {
			c.log.V(1).Info("reconciled", "button", res.Button, "setpoint", c.state.Current, "target", c.state.Target)
		}
	}

	res.Published = c.publish(now(), false, nil)
	return res
}

func (c *Controller) publish(now time.Time, force bool, messageID *string) bool {
	sent, err := c.publisher.MaybePublish(now, c.state, force, messageID)
	if err != nil {
		c.log.Error(err, "status publish failed")
	}
	return sent
}
