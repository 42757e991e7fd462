package heater

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMissingStatusObject(t *testing.T) {
	payloads := []string{
		`{"foo":"bar"}`,
		`{"status":"on"}`,
		`{"status":null}`,
		`{"status":[1,2]}`,
		`null`,
		`[]`,
		`not json`,
		``,
	}
	for _, p := range payloads {
		_, err := Decode([]byte(p))
		assert.ErrorIs(t, err, ErrMissingStatusObject, "payload %q", p)
	}
}

func TestDecodeFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Command
	}{
		{
			name:    "empty status",
			payload: `{"status":{}}`,
			want:    Command{},
		},
		{
			name:    "power string true",
			payload: `{"status":{"powerOn":"TRUE"}}`,
			want:    Command{PowerOn: boolPtr(true)},
		},
		{
			name:    "power other string",
			payload: `{"status":{"powerOn":"off"}}`,
			want:    Command{PowerOn: boolPtr(false)},
		},
		{
			name:    "power json bool",
			payload: `{"status":{"powerOn":true}}`,
			want:    Command{PowerOn: boolPtr(true)},
		},
		{
			name:    "power wrong type",
			payload: `{"status":{"powerOn":1}}`,
			want:    Command{},
		},
		{
			name:    "delta and temp",
			payload: `{"status":{"tempDelta":2,"temp":21}}`,
			want:    Command{TempDelta: 2, Temp: 21},
		},
		{
			name:    "negative delta",
			payload: `{"status":{"tempDelta":-1}}`,
			want:    Command{TempDelta: -1},
		},
		{
			name:    "fraction truncated",
			payload: `{"status":{"temp":21.7}}`,
			want:    Command{Temp: 21},
		},
		{
			name:    "numeric strings ignored",
			payload: `{"status":{"temp":"21","tempDelta":"1"}}`,
			want:    Command{},
		},
		{
			name:    "huge value saturates",
			payload: `{"status":{"temp":1e12}}`,
			want:    Command{Temp: maxFieldMagnitude},
		},
		{
			name:    "message id",
			payload: `{"status":{},"messageId":"abc"}`,
			want:    Command{MessageID: strPtr("abc")},
		},
		{
			name:    "empty message id is still an id",
			payload: `{"status":{},"messageId":""}`,
			want:    Command{MessageID: strPtr("")},
		},
		{
			name:    "non-string message id",
			payload: `{"status":{},"messageId":42}`,
			want:    Command{},
		},
		{
			name:    "null message id",
			payload: `{"status":{},"messageId":null}`,
			want:    Command{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeOmitsNullMessageID(t *testing.T) {
	cmd, err := Decode([]byte(`{"status":{"temp":20},"messageId":null}`))
	require.NoError(t, err)

	payload, err := Encode(State{Target: 20}, cmd.MessageID)
	require.NoError(t, err)
	assert.Equal(t, `{"status":{"powerOn":false,"temp":20,"heating":false}}`, string(payload))
}

func TestApply(t *testing.T) {
	l := DefaultLimits()

	tests := []struct {
		name      string
		start     State
		cmd       Command
		want      State
		wantPower bool
	}{
		{
			name:  "nothing requested",
			start: State{Target: 6},
			cmd:   Command{},
			want:  State{Target: 6},
		},
		{
			name:      "power on",
			start:     State{Target: 6},
			cmd:       Command{PowerOn: boolPtr(true)},
			want:      State{PowerOn: true, Target: 6},
			wantPower: true,
		},
		{
			name:  "power already on",
			start: State{PowerOn: true, Target: 6},
			cmd:   Command{PowerOn: boolPtr(true)},
			want:  State{PowerOn: true, Target: 6},
		},
		{
			name:  "delta",
			start: State{Target: 30},
			cmd:   Command{TempDelta: 3},
			want:  State{Target: 33},
		},
		{
			name:  "delta clamps high",
			start: State{Target: 34},
			cmd:   Command{TempDelta: 10},
			want:  State{Target: 35},
		},
		{
			name:  "negative delta clamps low",
			start: State{Target: 6},
			cmd:   Command{TempDelta: -4},
			want:  State{Target: 5},
		},
		{
			name:  "absolute",
			start: State{Target: 6},
			cmd:   Command{Temp: 20},
			want:  State{Target: 20},
		},
		{
			name:  "absolute above range",
			start: State{Target: 6},
			cmd:   Command{Temp: 50},
			want:  State{Target: 35},
		},
		{
			name:  "absolute below range",
			start: State{Target: 20},
			cmd:   Command{Temp: 1},
			want:  State{Target: 5},
		},
		{
			name:  "absolute overrides delta",
			start: State{Target: 10},
			cmd:   Command{TempDelta: 5, Temp: 12},
			want:  State{Target: 12},
		},
		{
			name:  "absolute equal to delta result",
			start: State{Target: 10},
			cmd:   Command{TempDelta: 5, Temp: 15},
			want:  State{Target: 15},
		},
		{
			name:  "current untouched",
			start: State{Current: 9, Target: 10},
			cmd:   Command{Temp: 25},
			want:  State{Current: 9, Target: 25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.start
			gotPower := s.Apply(tt.cmd, l)
			assert.Equal(t, tt.want, s)
			assert.Equal(t, tt.wantPower, gotPower)
		})
	}
}

func TestEncodeExactJSON(t *testing.T) {
	s := State{PowerOn: true, Heating: false, Current: 7, Target: 21}

	payload, err := Encode(s, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"status":{"powerOn":true,"temp":21,"heating":false}}`, string(payload))

	payload, err = Encode(s, strPtr("m1"))
	require.NoError(t, err)
	assert.Equal(t, `{"status":{"powerOn":true,"temp":21,"heating":false},"messageId":"m1"}`, string(payload))
}

// The control schema reuses the status field names, so an encoded status
// fed back through Decode carries the same values.
func TestEncodeDecodeFieldNames(t *testing.T) {
	for _, s := range []State{
		{PowerOn: true, Target: 21},
		{PowerOn: false, Target: 5},
		{PowerOn: true, Heating: true, Target: 35},
	} {
		payload, err := Encode(s, strPtr("rt"))
		require.NoError(t, err)

		cmd, err := Decode(payload)
		require.NoError(t, err)
		require.NotNil(t, cmd.PowerOn)
		assert.Equal(t, s.PowerOn, *cmd.PowerOn)
		assert.Equal(t, s.Target, cmd.Temp)
		require.NotNil(t, cmd.MessageID)
		assert.Equal(t, "rt", *cmd.MessageID)

		var parsed StatusMessage
		require.NoError(t, json.Unmarshal(payload, &parsed))
		assert.Equal(t, s.Heating, parsed.Status.Heating)
	}
}
