//go:build !linux

package camera

import (
	"context"
	"errors"
)

// WatchDetector is not available on non-Linux platforms.
type WatchDetector struct{}

// NewWatchDetector returns an error on non-Linux platforms.
func NewWatchDetector(pattern string) (*WatchDetector, error) {
	return nil, errors.New("camera: watch detector not supported on this platform (requires Linux inotify)")
}

// Paths is not implemented on non-Linux platforms.
func (w *WatchDetector) Paths() []string { return nil }

// Next is not implemented on non-Linux platforms.
func (w *WatchDetector) Next(ctx context.Context) (Signal, error) {
	return Signal{}, errors.New("camera: watch detector not supported")
}

// Close is not implemented on non-Linux platforms.
func (w *WatchDetector) Close() error { return nil }
