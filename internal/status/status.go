// Package status provides a thread-safe status tracker for the
// camera-snitch daemon. It is read by the HTTP status endpoint.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/camera-snitch/internal/logic"
)

// TransitionCounts tallies confirmed state transitions since startup.
type TransitionCounts struct {
	On  int
	Off int
}

// Config contains daemon configuration for display.
type Config struct {
	Detector   string
	DeviceGlob string
	DebounceMs int64
	PollMs     int64
	Broker     string
	HTTPAddr   string
	DeviceID   string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Camera        logic.State
	LastChange    time.Time
	Counts        TransitionCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// Camera state starts as OFF; the detector confirms the real state
// shortly after startup.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Camera:     logic.StateOff,
			LastChange: startTime,
			StartTime:  startTime,
			Config:     cfg,
		},
	}
}

// RecordTransition sets the camera state after a confirmed transition.
// Called from runLoop each time the debouncer confirms a change.
func (t *Tracker) RecordTransition(tr logic.Transition) {
	t.mu.Lock()
	t.snap.Camera = tr.To
	t.snap.LastChange = tr.At
	switch tr.To {
	case logic.StateOn:
		t.snap.Counts.On++
	case logic.StateOff:
		t.snap.Counts.Off++
	}
	t.mu.Unlock()
}

// SetMQTTConnected records broker connection state.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
