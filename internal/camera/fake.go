package camera

import "context"

// FakeDetector is a test double that yields scripted signals.
type FakeDetector struct {
	// Steps contains scripted results. Each call to Next() consumes the
	// next step. When exhausted, Next blocks until ctx is cancelled.
	Steps []FakeStep

	// index tracks current position in Steps
	index int

	// Closed tracks if Close was called
	Closed bool
}

// FakeStep is a single scripted Next() result: a signal or an error.
type FakeStep struct {
	Signal Signal
	Err    error
}

// NewFakeDetector creates a FakeDetector with the given steps.
func NewFakeDetector(steps []FakeStep) *FakeDetector {
	return &FakeDetector{Steps: steps}
}

// Next returns the next scripted step, or blocks until ctx is cancelled
// once the script is exhausted (mirroring a quiet device).
func (f *FakeDetector) Next(ctx context.Context) (Signal, error) {
	if f.index < len(f.Steps) {
		step := f.Steps[f.index]
		f.index++
		if step.Err != nil {
			return Signal{}, step.Err
		}
		return step.Signal, nil
	}

	<-ctx.Done()
	return Signal{}, ctx.Err()
}

// Close marks the detector as closed.
func (f *FakeDetector) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script.
func (f *FakeDetector) Reset() {
	f.index = 0
	f.Closed = false
}
