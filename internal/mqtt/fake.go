package mqtt

import (
	"github.com/sweeney/camera-snitch/internal/logic"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// States contains all states passed to PublishState.
	States []logic.State

	// Payloads contains the wire payloads for state publishes.
	Payloads [][]byte

	// DiscoveryPayloads contains the serialized discovery descriptors.
	DiscoveryPayloads [][]byte

	// Discovery is the descriptor serialized by PublishDiscovery.
	Discovery Discovery

	// StateError, if set, will be returned by PublishState.
	StateError error

	// DiscoveryError, if set, will be returned by PublishDiscovery.
	DiscoveryError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing, with a default
// discovery descriptor.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{
		Discovery: NewDiscovery("testcamera", "Test Camera"),
	}
}

// PublishDiscovery records the serialized discovery descriptor.
func (f *FakePublisher) PublishDiscovery() error {
	if f.DiscoveryError != nil {
		return f.DiscoveryError
	}

	payload, err := FormatDiscovery(f.Discovery)
	if err != nil {
		return err
	}
	f.DiscoveryPayloads = append(f.DiscoveryPayloads, payload)
	return nil
}

// PublishState records the state and its wire payload.
func (f *FakePublisher) PublishState(state logic.State) error {
	if f.StateError != nil {
		return f.StateError
	}

	f.States = append(f.States, state)
	f.Payloads = append(f.Payloads, FormatState(state))
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.States = nil
	f.Payloads = nil
	f.DiscoveryPayloads = nil
	f.StateError = nil
	f.DiscoveryError = nil
	f.Closed = false
	f.Connected = false
}
