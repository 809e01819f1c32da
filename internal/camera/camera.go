// Package camera produces raw camera-activity signals with hardware
// abstraction. The watch implementation observes open/close activity on
// device nodes via inotify; the poll implementation periodically asks
// which processes hold a device node open. The fake implementation
// allows testing without hardware.
package camera

import (
	"context"
	"time"

	"github.com/sweeney/camera-snitch/internal/logic"
)

// Signal is a raw candidate state observed at a point in time. It is
// transient: signals are fed to the debouncer and discarded.
type Signal struct {
	State logic.State
	At    time.Time
}

// Detector yields raw candidate signals from the operating environment.
type Detector interface {
	// Next blocks until the next raw signal is available, the detector
	// hits a transient error, or ctx is cancelled. Transient errors are
	// safe to retry: the detector remains usable.
	Next(ctx context.Context) (Signal, error)

	// Close releases detector resources.
	Close() error
}
