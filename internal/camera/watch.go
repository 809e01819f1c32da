//go:build linux

package camera

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/sweeney/camera-snitch/internal/logic"
)

// pollTimeoutMs bounds each wait on the inotify fd so Next can notice
// context cancellation.
const pollTimeoutMs = 250

// WatchDetector observes open/close activity on device nodes matching a
// glob pattern, using inotify. Any open event yields an On signal; a
// close event (with or without write) yields Off.
type WatchDetector struct {
	fd      int
	paths   []string
	pending []Signal
	buf     [4096]byte
	now     func() time.Time
}

// NewWatchDetector enumerates device nodes matching pattern and
// registers an open/close watch on each. Zero matching nodes is not an
// error: the watch simply never fires and the camera reads as absent.
// Initialization of the watch mechanism itself failing is fatal.
func NewWatchDetector(pattern string) (*WatchDetector, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad device pattern %q: %w", pattern, err)
	}

	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("init inotify: %w", err)
	}

	for _, path := range matches {
		mask := uint32(unix.IN_OPEN | unix.IN_CLOSE_WRITE | unix.IN_CLOSE_NOWRITE)
		if _, err := unix.InotifyAddWatch(fd, path, mask); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
	}

	return &WatchDetector{
		fd:    fd,
		paths: matches,
		now:   time.Now,
	}, nil
}

// Paths returns the device nodes being watched.
func (w *WatchDetector) Paths() []string {
	return w.paths
}

// Next blocks until a watched device node is opened or closed. With no
// watched nodes it blocks until ctx is cancelled.
func (w *WatchDetector) Next(ctx context.Context) (Signal, error) {
	for {
		if len(w.pending) > 0 {
			s := w.pending[0]
			w.pending = w.pending[1:]
			return s, nil
		}

		if err := ctx.Err(); err != nil {
			return Signal{}, err
		}

		fds := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollTimeoutMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Signal{}, fmt.Errorf("poll inotify: %w", err)
		}
		if n == 0 {
			continue // timeout, re-check ctx
		}

		nr, err := unix.Read(w.fd, w.buf[:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return Signal{}, fmt.Errorf("read inotify: %w", err)
		}

		w.pending = append(w.pending, w.decode(w.buf[:nr])...)
	}
}

// decode parses a block of inotify events into signals. Events other
// than open/close (e.g. IN_IGNORED after a device disappears) are
// dropped.
func (w *WatchDetector) decode(data []byte) []Signal {
	var signals []Signal
	at := w.now()

	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(data) {
		ev := (*unix.InotifyEvent)(unsafe.Pointer(&data[offset]))
		offset += unix.SizeofInotifyEvent + int(ev.Len)

		switch {
		case ev.Mask&unix.IN_OPEN != 0:
			signals = append(signals, Signal{State: logic.StateOn, At: at})
		case ev.Mask&(unix.IN_CLOSE_WRITE|unix.IN_CLOSE_NOWRITE) != 0:
			signals = append(signals, Signal{State: logic.StateOff, At: at})
		}
	}
	return signals
}

// Close releases the inotify descriptor.
func (w *WatchDetector) Close() error {
	return unix.Close(w.fd)
}
