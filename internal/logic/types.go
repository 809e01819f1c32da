// Package logic contains pure business logic for camera state tracking.
// This package has NO external dependencies (no devices, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the logical state of the camera.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Transition represents a confirmed state change to be published.
type Transition struct {
	From State
	To   State
	At   time.Time
}
