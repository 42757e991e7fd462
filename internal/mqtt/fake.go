package mqtt

// FakeClient records published payloads for test assertions.
type FakeClient struct {
	// Payloads contains the status payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by PublishStatus.
	PublishError error

	// SystemEvents contains the lifecycle events that were published.
	SystemEvents []SystemEvent

	// SystemError, if set, will be returned by PublishSystem.
	SystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

// PublishStatus records the payload.
func (f *FakeClient) PublishStatus(payload []byte) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Payloads = append(f.Payloads, append([]byte(nil), payload...))
	return nil
}

// PublishSystem records the event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	if f.SystemError != nil {
		return f.SystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Last returns the most recent payload as a string, or "".
func (f *FakeClient) Last() string {
	if len(f.Payloads) == 0 {
		return ""
	}
	return string(f.Payloads[len(f.Payloads)-1])
}

// Reset clears recorded payloads.
func (f *FakeClient) Reset() {
	f.Payloads = nil
	f.SystemEvents = nil
	f.Closed = false
	f.PublishError = nil
	f.SystemError = nil
	f.Connected = false
}
