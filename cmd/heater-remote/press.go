package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/sweeney/heater-remote/internal/button"
	"github.com/sweeney/heater-remote/internal/gpio"
	"github.com/sweeney/heater-remote/internal/heater"
)

func newPressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "press up|down|func [count]",
		Short:     "Press a button and exit, for checking the wiring",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "func"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePress(args)
			if err != nil {
				return err
			}

			writer, err := gpio.NewRealWriter(a.cfg.Chip, a.cfg.Pins)
			if err != nil {
				return fmt.Errorf("init gpio: %w", err)
			}
			defer writer.Close()

			press(writer, a.cfg.Timing, button.SystemClock{}, p, cmd.OutOrStdout(), a.log)
			return nil
		},
	}
}

// parsePress turns "up" or "down 3" into a pulse.
func parsePress(args []string) (heater.Pulse, error) {
	p := heater.Pulse{Button: heater.Button(strings.ToUpper(args[0])), Count: 1}
	switch p.Button {
	case heater.ButtonUp, heater.ButtonDown, heater.ButtonFunc:
	default:
		return heater.Pulse{}, fmt.Errorf("unknown button %q: want up, down or func", args[0])
	}

	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return heater.Pulse{}, fmt.Errorf("count %q: want a positive integer", args[1])
		}
		p.Count = n
	}
	return p, nil
}

func press(out gpio.Writer, timing button.Timing, clock button.Clock, p heater.Pulse, w io.Writer, log logr.Logger) {
	actuator := button.New(out, timing, clock, log.WithName("button"))
	actuator.OnPress(func(b heater.Button, held time.Duration) {
		fmt.Fprintf(w, "%s held %v\n", b, held)
	})
	actuator.Press(p)
}
