package logic

import "time"

// Debouncer collapses noisy bursts of raw state signals into stable,
// confirmed transitions. Real cameras emit open/close pairs within
// milliseconds when an application probes them; without this gate every
// probe would generate a storm of publishes.
//
// A candidate is confirmed if and only if it differs from the confirmed
// state and at least the settle window has elapsed since the previous
// confirmed change. Candidates equal to the confirmed state never reset
// the timer, so a held state is never re-announced.
//
// Not safe for concurrent use; owned by a single loop.
type Debouncer struct {
	window     time.Duration
	confirmed  State
	lastChange time.Time
}

// NewDebouncer creates a debouncer with confirmed state Off and the
// settle timer backdated a full window, so the very first On signal
// confirms without waiting.
func NewDebouncer(window time.Duration, now time.Time) *Debouncer {
	return &Debouncer{
		window:     window,
		confirmed:  StateOff,
		lastChange: now.Add(-window),
	}
}

// Observe feeds one raw candidate signal observed at the given time.
// It returns the confirmed transition and true if the candidate was
// confirmed, or a zero Transition and false otherwise.
func (d *Debouncer) Observe(candidate State, now time.Time) (Transition, bool) {
	if candidate == d.confirmed {
		return Transition{}, false
	}
	if now.Sub(d.lastChange) < d.window {
		// Inside the settle window: suppressed, timer untouched.
		return Transition{}, false
	}

	t := Transition{From: d.confirmed, To: candidate, At: now}
	d.confirmed = candidate
	d.lastChange = now
	return t, true
}

// State returns the last confirmed state.
func (d *Debouncer) State() State {
	return d.confirmed
}

// LastChange returns the time of the last confirmed transition.
func (d *Debouncer) LastChange() time.Time {
	return d.lastChange
}
