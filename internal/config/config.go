// Package config loads daemon configuration from flags and environment.
// Every flag can be overridden by a CAMERA_SNITCH_ environment variable
// (dashes become underscores, e.g. CAMERA_SNITCH_MQTT_HOST).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Detector strategy names accepted by the --detector flag.
const (
	DetectorWatch = "watch"
	DetectorPoll  = "poll"
)

const envPrefix = "CAMERA_SNITCH"

// Config holds all daemon settings.
type Config struct {
	MQTTHost     string
	MQTTPort     int
	KeepAlive    time.Duration
	Throttle     time.Duration
	Debounce     time.Duration
	IdleTick     time.Duration
	PollInterval time.Duration
	DeviceGlob   string
	Detector     string
	DeviceID     string
	DeviceName   string
	HTTPAddr     string // empty disables the status server
	LogLevel     string
}

// Broker returns the broker URL in the form the MQTT client expects.
func (c Config) Broker() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTHost, c.MQTTPort)
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("mqtt-host", "localhost", "MQTT broker host")
	fs.Int("mqtt-port", 1883, "MQTT broker port")
	fs.Duration("keep-alive", 30*time.Second, "MQTT keep-alive interval")
	fs.Duration("throttle", 100*time.Millisecond, "minimum interval between outbound publishes")
	fs.Duration("debounce", 2*time.Second, "settle window before a state change is confirmed")
	fs.Duration("idle-tick", 5*time.Second, "coordinator wakeup interval when nothing happens")
	fs.Duration("poll-interval", 5*time.Second, "device poll interval (poll detector only)")
	fs.String("device-glob", "/dev/video*", "glob matching the video capture device nodes")
	fs.String("detector", DetectorWatch, "detection strategy: watch or poll")
	fs.String("device-id", "officecamera", "device identifier used in MQTT topics")
	fs.String("device-name", "Office Camera", "display name announced via discovery")
	fs.String("http", ":8080", "status server listen address (empty to disable)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	return fs
}

// Load parses args (without the program name) and the environment into
// a validated Config.
func Load(args []string) (Config, error) {
	fs := newFlagSet("camera-snitch")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}

	cfg := Config{
		MQTTHost:     v.GetString("mqtt-host"),
		MQTTPort:     v.GetInt("mqtt-port"),
		KeepAlive:    v.GetDuration("keep-alive"),
		Throttle:     v.GetDuration("throttle"),
		Debounce:     v.GetDuration("debounce"),
		IdleTick:     v.GetDuration("idle-tick"),
		PollInterval: v.GetDuration("poll-interval"),
		DeviceGlob:   v.GetString("device-glob"),
		Detector:     v.GetString("detector"),
		DeviceID:     v.GetString("device-id"),
		DeviceName:   v.GetString("device-name"),
		HTTPAddr:     v.GetString("http"),
		LogLevel:     v.GetString("log-level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MQTTHost == "" {
		return fmt.Errorf("mqtt-host must not be empty")
	}
	if c.MQTTPort < 1 || c.MQTTPort > 65535 {
		return fmt.Errorf("mqtt-port %d out of range", c.MQTTPort)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %v", c.Debounce)
	}
	if c.IdleTick <= 0 {
		return fmt.Errorf("idle-tick must be positive, got %v", c.IdleTick)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %v", c.PollInterval)
	}
	if c.KeepAlive <= 0 {
		return fmt.Errorf("keep-alive must be positive, got %v", c.KeepAlive)
	}
	if c.Throttle < 0 {
		return fmt.Errorf("throttle must not be negative, got %v", c.Throttle)
	}
	if c.DeviceGlob == "" {
		return fmt.Errorf("device-glob must not be empty")
	}
	if c.Detector != DetectorWatch && c.Detector != DetectorPoll {
		return fmt.Errorf("unknown detector %q (expected %s or %s)", c.Detector, DetectorWatch, DetectorPoll)
	}
	if c.DeviceID == "" {
		return fmt.Errorf("device-id must not be empty")
	}
	return nil
}
