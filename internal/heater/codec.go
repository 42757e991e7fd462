package heater

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// ErrMissingStatusObject is returned by Decode when the payload is not a
// JSON object holding a nested "status" object.
var ErrMissingStatusObject = errors.New(`heater: JSON with "status" object not received`)

// Command is one decoded control message. Zero-valued fields request no
// change.
type Command struct {
	PowerOn   *bool   // nil = leave power state alone
	TempDelta int     // relative setpoint change, 0 = none
	Temp      int     // absolute setpoint, 0 = none
	MessageID *string // echoed in the reply when set
}

// Largest magnitude accepted for numeric fields before clamping. Keeps
// int arithmetic far from overflow.
const maxFieldMagnitude = math.MaxInt16

// Decode parses an inbound control payload. Field extraction is
// best-effort: a field of the wrong type is treated as absent.
func Decode(payload []byte) (Command, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return Command{}, ErrMissingStatusObject
	}

	var status map[string]json.RawMessage
	raw, ok := root["status"]
	if !ok || json.Unmarshal(raw, &status) != nil || status == nil {
		return Command{}, ErrMissingStatusObject
	}

	cmd := Command{
		PowerOn:   decodePower(status["powerOn"]),
		TempDelta: decodeInt(status["tempDelta"]),
		Temp:      decodeInt(status["temp"]),
	}

	// null leaves the id unset; a non-string id is ignored
	if raw, ok := root["messageId"]; ok {
		var id *string
		if json.Unmarshal(raw, &id) == nil {
			cmd.MessageID = id
		}
	}

	return cmd, nil
}

// decodePower accepts "true" in any case as on and any other string as
// off, as well as JSON booleans.
func decodePower(raw json.RawMessage) *bool {
	if raw == nil {
		return nil
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		on := strings.EqualFold(s, "true")
		return &on
	}

	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return &b
	}
	return nil
}

// decodeInt reads a JSON number, truncating fractions and saturating at
// maxFieldMagnitude. Anything else reads as 0.
func decodeInt(raw json.RawMessage) int {
	if raw == nil {
		return 0
	}

	var f float64
	if json.Unmarshal(raw, &f) != nil {
		return 0
	}

	switch {
	case f > maxFieldMagnitude:
		return maxFieldMagnitude
	case f < -maxFieldMagnitude:
		return -maxFieldMagnitude
	}
	return int(f)
}

// Apply mutates s according to cmd. The delta is applied before the
// absolute temperature, so an absolute value in the same message wins.
// Returns whether the power state changed.
func (s *State) Apply(cmd Command, l Limits) (powerChanged bool) {
	if cmd.PowerOn != nil && *cmd.PowerOn != s.PowerOn {
		s.PowerOn = *cmd.PowerOn
		powerChanged = true
	}

	if cmd.TempDelta != 0 {
		s.Target = l.Clamp(s.Target + cmd.TempDelta)
	}

	if cmd.Temp != 0 && cmd.Temp != s.Target {
		s.Target = l.Clamp(cmd.Temp)
	}

	return powerChanged
}

// StatusMessage is the outbound status payload.
type StatusMessage struct {
	Status    StatusBody `json:"status"`
	MessageID *string    `json:"messageId,omitempty"`
}

// StatusBody reports the heater state. Temp is the target setpoint.
type StatusBody struct {
	PowerOn bool `json:"powerOn"`
	Temp    int  `json:"temp"`
	Heating bool `json:"heating"`
}

// Encode creates the status payload for s. messageID is included only
// when non-nil.
func Encode(s State, messageID *string) ([]byte, error) {
	return json.Marshal(StatusMessage{
		Status: StatusBody{
			PowerOn: s.PowerOn,
			Temp:    s.Target,
			Heating: s.Heating,
		},
		MessageID: messageID,
	})
}
