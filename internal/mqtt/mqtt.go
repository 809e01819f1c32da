// Package mqtt provides MQTT publishing with abstraction for testing.
// State and discovery messages follow the Home Assistant MQTT
// binary_sensor conventions: both are retained, at-least-once, on
// device-scoped topics under the discovery prefix.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/camera-snitch/internal/logic"
)

// topicPrefix is the Home Assistant discovery prefix for binary sensors.
const topicPrefix = "homeassistant/binary_sensor"

const (
	deviceClass = "connectivity"
	model       = "Custom Binary Sensor"
	swVersion   = "0.2"
)

// StateTopic returns the retained state topic for a device.
func StateTopic(deviceID string) string {
	return fmt.Sprintf("%s/%s/state", topicPrefix, deviceID)
}

// ConfigTopic returns the retained discovery topic for a device.
func ConfigTopic(deviceID string) string {
	return fmt.Sprintf("%s/%s/config", topicPrefix, deviceID)
}

// Publisher publishes camera state to the broker.
type Publisher interface {
	// PublishDiscovery sends the retained discovery descriptor.
	// Best-effort: a failure is reported, never retried internally.
	PublishDiscovery() error

	// PublishState sends the retained ON/OFF state message.
	// Returns error if publishing fails (must not crash the process).
	PublishState(state logic.State) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// EventKind classifies a broker connection event.
type EventKind string

const (
	EventConnected      EventKind = "CONNECTED"
	EventConnectionLost EventKind = "CONNECTION_LOST"
	EventReconnecting   EventKind = "RECONNECTING"
	EventMessage        EventKind = "MESSAGE"
)

// Event is an inbound broker-connection event. Events are consumed for
// observability only; they carry no control effect.
type Event struct {
	Kind   EventKind
	Topic  string // set for EventMessage
	Detail string // human-readable context (error text, payload size)
	At     time.Time
}

// Discovery is the auto-discovery descriptor consumed by the hub.
// Constructed once at startup and never mutated.
type Discovery struct {
	Name        string     `json:"name"`
	Device      DeviceInfo `json:"device"`
	StateTopic  string     `json:"state_topic"`
	DeviceClass string     `json:"device_class"`
	PayloadOn   string     `json:"payload_on"`
	PayloadOff  string     `json:"payload_off"`
}

// DeviceInfo identifies the device in the hub's registry.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	SWVersion    string   `json:"sw_version"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// NewDiscovery builds the discovery descriptor for a device.
func NewDiscovery(deviceID, displayName string) Discovery {
	return Discovery{
		Name: displayName,
		Device: DeviceInfo{
			Identifiers:  []string{deviceID},
			Name:         displayName,
			SWVersion:    swVersion,
			Model:        model,
			Manufacturer: "camera-snitch",
		},
		StateTopic:  StateTopic(deviceID),
		DeviceClass: deviceClass,
		PayloadOn:   string(logic.StateOn),
		PayloadOff:  string(logic.StateOff),
	}
}

// FormatDiscovery serializes the discovery descriptor.
func FormatDiscovery(d Discovery) ([]byte, error) {
	return json.Marshal(d)
}

// FormatState returns the wire payload for a state message.
func FormatState(state logic.State) []byte {
	return []byte(state)
}
