package heater

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaybePublishFirstCheckIsDue(t *testing.T) {
	tr := &recordingTransport{}
	p := NewStatusPublisher(tr, 30*time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	sent, err := p.MaybePublish(now, State{Target: 6}, false, nil)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, now, p.LastPublished())
	assert.Len(t, tr.payloads, 1)
}

func TestMaybePublishRateLimited(t *testing.T) {
	tr := &recordingTransport{}
	p := NewStatusPublisher(tr, 30*time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	p.MaybePublish(now, State{Target: 6}, false, nil)
	sent, _ := p.MaybePublish(now.Add(10*time.Second), State{Target: 6}, false, nil)
	assert.False(t, sent)
	sent, _ = p.MaybePublish(now.Add(30*time.Second), State{Target: 6}, false, nil)
	assert.False(t, sent, "exactly one interval is not past it")

	assert.Len(t, tr.payloads, 1)

	sent, _ = p.MaybePublish(now.Add(30*time.Second+time.Millisecond), State{Target: 6}, false, nil)
	assert.True(t, sent)
	assert.Len(t, tr.payloads, 2)
}

func TestMaybePublishForce(t *testing.T) {
	tr := &recordingTransport{}
	p := NewStatusPublisher(tr, time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	p.MaybePublish(now, State{Target: 6}, false, nil)
	sent, err := p.MaybePublish(now.Add(time.Second), State{Target: 9}, true, strPtr("x"))
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, tr.payloads, 2)
	assert.Equal(t, `{"status":{"powerOn":false,"temp":9,"heating":false},"messageId":"x"}`, tr.payloads[1])

	// A forced publish restarts the periodic interval.
	sent, _ = p.MaybePublish(now.Add(30*time.Minute), State{Target: 9}, false, nil)
	assert.False(t, sent)
}

func TestMaybePublishTransportError(t *testing.T) {
	tr := &recordingTransport{err: errBrokerDown}
	p := NewStatusPublisher(tr, 30*time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	sent, err := p.MaybePublish(now, State{Target: 6}, false, nil)
	assert.True(t, sent)
	assert.ErrorIs(t, err, errBrokerDown)
	assert.Equal(t, now, p.LastPublished(), "timestamp recorded before transmission")

	sent, _ = p.MaybePublish(now.Add(time.Second), State{Target: 6}, false, nil)
	assert.False(t, sent, "no retry before the interval")
}
