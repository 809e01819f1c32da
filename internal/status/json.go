package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Camera        string     `json:"camera"`
	LastChange    string     `json:"last_change"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"transition_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	On  int `json:"on"`
	Off int `json:"off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Detector   string `json:"detector"`
	DeviceGlob string `json:"device_glob"`
	DebounceMs int64  `json:"debounce_ms"`
	PollMs     int64  `json:"poll_ms,omitempty"`
	Broker     string `json:"broker"`
	HTTPAddr   string `json:"http_addr"`
	DeviceID   string `json:"device_id"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Camera:        string(snap.Camera),
		LastChange:    snap.LastChange.UTC().Format(time.RFC3339),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			On:  snap.Counts.On,
			Off: snap.Counts.Off,
		},
		Config: ConfigJSON{
			Detector:   snap.Config.Detector,
			DeviceGlob: snap.Config.DeviceGlob,
			DebounceMs: snap.Config.DebounceMs,
			PollMs:     snap.Config.PollMs,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
			DeviceID:   snap.Config.DeviceID,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
