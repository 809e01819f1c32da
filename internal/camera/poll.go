package camera

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sweeney/camera-snitch/internal/logic"
)

// Lister reports the IDs of processes currently holding any of the
// given device nodes open.
type Lister func(paths []string) ([]string, error)

// PollDetector inspects which processes hold a matching device node
// open, on a fixed interval. Any non-empty result reads as On. This
// strategy misses opens shorter than the interval and is retained only
// for environments without inotify; prefer WatchDetector.
type PollDetector struct {
	pattern string
	list    Lister
	ticker  *time.Ticker
	now     func() time.Time
}

// NewPollDetector creates a poll detector for device nodes matching
// pattern, checking once per interval using lsof.
func NewPollDetector(pattern string, interval time.Duration) *PollDetector {
	return &PollDetector{
		pattern: pattern,
		list:    lsofHolders,
		ticker:  time.NewTicker(interval),
		now:     time.Now,
	}
}

// Next waits for the next poll interval and returns the observed state.
// Introspection failures are transient: the detector stays usable and
// the caller retries on the next interval.
func (p *PollDetector) Next(ctx context.Context) (Signal, error) {
	select {
	case <-ctx.Done():
		return Signal{}, ctx.Err()
	case <-p.ticker.C:
	}

	matches, err := filepath.Glob(p.pattern)
	if err != nil {
		return Signal{}, fmt.Errorf("bad device pattern %q: %w", p.pattern, err)
	}
	if len(matches) == 0 {
		// No device nodes at all: camera absent, reads as off.
		return Signal{State: logic.StateOff, At: p.now()}, nil
	}

	holders, err := p.list(matches)
	if err != nil {
		return Signal{}, fmt.Errorf("list device holders: %w", err)
	}

	state := logic.StateOff
	if len(holders) > 0 {
		state = logic.StateOn
	}
	return Signal{State: state, At: p.now()}, nil
}

// Close stops the poll ticker.
func (p *PollDetector) Close() error {
	p.ticker.Stop()
	return nil
}

// lsofHolders shells out to lsof -t, which prints one PID per line for
// each process holding one of the paths open. lsof exits 1 when no
// process matches; that is "no holders", not a failure.
func lsofHolders(paths []string) ([]string, error) {
	args := append([]string{"-t"}, paths...)
	out, err := exec.Command("lsof", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(out) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("lsof: %w", err)
	}

	var pids []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			pids = append(pids, line)
		}
	}
	return pids, nil
}
