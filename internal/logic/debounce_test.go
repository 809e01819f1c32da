package logic

import (
	"testing"
	"time"
)

func TestNewDebouncer(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(2*time.Second, now)
	if d == nil {
		t.Fatal("NewDebouncer returned nil")
	}
	if d.State() != StateOff {
		t.Errorf("initial state: got %s, want OFF", d.State())
	}
	if !d.LastChange().Equal(now.Add(-2 * time.Second)) {
		t.Errorf("timer should be backdated a full window, got %v", d.LastChange())
	}
}

func TestFirstDifferingSignalConfirmsImmediately(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(2*time.Second, now)

	tr, ok := d.Observe(StateOn, now)
	if !ok {
		t.Fatal("first ON signal should confirm without waiting a window")
	}
	if tr.From != StateOff || tr.To != StateOn {
		t.Errorf("transition: got %s->%s, want OFF->ON", tr.From, tr.To)
	}
	if !tr.At.Equal(now) {
		t.Errorf("transition time: got %v, want %v", tr.At, now)
	}
	if d.State() != StateOn {
		t.Errorf("state after confirm: got %s, want ON", d.State())
	}
}

// Scenario: On@0ms, Off@50ms, On@120ms with a 300ms window and a
// transition timer that just reset. The whole burst is suppressed; the
// first On arriving after the window elapses confirms exactly once.
func TestBurstInsideWindowSuppressed(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300*time.Millisecond, t0)
	d.lastChange = t0 // timer just reset, prior state Off

	if _, ok := d.Observe(StateOn, t0); ok {
		t.Error("On@0ms should be suppressed inside the window")
	}
	if _, ok := d.Observe(StateOff, t0.Add(50*time.Millisecond)); ok {
		t.Error("Off@50ms equals confirmed state, should not confirm")
	}
	if _, ok := d.Observe(StateOn, t0.Add(120*time.Millisecond)); ok {
		t.Error("On@120ms should still be suppressed")
	}
	if d.State() != StateOff {
		t.Errorf("state during burst: got %s, want OFF", d.State())
	}

	// Window elapses; the next On confirms exactly once.
	tr, ok := d.Observe(StateOn, t0.Add(300*time.Millisecond))
	if !ok {
		t.Fatal("On after the window should confirm")
	}
	if tr.To != StateOn {
		t.Errorf("confirmed: got %s, want ON", tr.To)
	}
	if _, ok := d.Observe(StateOn, t0.Add(310*time.Millisecond)); ok {
		t.Error("repeated On after confirmation should not confirm again")
	}
}

// Scenario: prior state Off, Off candidate received. No confirm, and
// the settle timer must not reset.
func TestEqualCandidateNeverResetsTimer(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300*time.Millisecond, t0)
	d.lastChange = t0

	before := d.LastChange()
	if _, ok := d.Observe(StateOff, t0.Add(100*time.Millisecond)); ok {
		t.Error("Off candidate with Off confirmed should not confirm")
	}
	if !d.LastChange().Equal(before) {
		t.Error("equal candidate must not reset the settle timer")
	}

	// Because the timer did not reset, an On at 300ms confirms.
	if _, ok := d.Observe(StateOn, t0.Add(300*time.Millisecond)); !ok {
		t.Error("On at window boundary should confirm (timer was not reset)")
	}
}

func TestSuppressedCandidateDoesNotResetTimer(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300*time.Millisecond, t0)
	d.lastChange = t0

	// Suppressed On inside the window.
	d.Observe(StateOn, t0.Add(200*time.Millisecond))
	if !d.LastChange().Equal(t0) {
		t.Error("suppressed candidate must not reset the settle timer")
	}

	// Window is measured from the last confirmed change, not from the
	// suppressed candidate.
	if _, ok := d.Observe(StateOn, t0.Add(300*time.Millisecond)); !ok {
		t.Error("On at 300ms from last change should confirm")
	}
}

func TestNoSpuriousReannouncement(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300*time.Millisecond, t0)

	if _, ok := d.Observe(StateOn, t0); !ok {
		t.Fatal("first On should confirm")
	}

	// Hold On for many multiples of the window: never a second confirm.
	for i := 1; i <= 50; i++ {
		at := t0.Add(time.Duration(i) * 300 * time.Millisecond)
		if _, ok := d.Observe(StateOn, at); ok {
			t.Fatalf("iteration %d: held state re-announced", i)
		}
	}
	if d.State() != StateOn {
		t.Errorf("state: got %s, want ON", d.State())
	}
}

func TestAtMostOneTransitionPerWindow(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300*time.Millisecond, t0)
	d.lastChange = t0

	// Alternating burst strictly inside one window.
	states := []State{StateOn, StateOff, StateOn, StateOff, StateOn}
	confirms := 0
	for i, s := range states {
		at := t0.Add(time.Duration(i*40) * time.Millisecond)
		if _, ok := d.Observe(s, at); ok {
			confirms++
		}
	}
	if confirms != 0 {
		t.Errorf("expected 0 confirmations inside one window, got %d", confirms)
	}
}

func TestBackToBackTransitions(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300*time.Millisecond, t0)

	tr, ok := d.Observe(StateOn, t0)
	if !ok || tr.To != StateOn {
		t.Fatalf("expected ON confirmation, got %v ok=%v", tr, ok)
	}

	// Off inside the window after the On confirm: suppressed.
	if _, ok := d.Observe(StateOff, t0.Add(100*time.Millisecond)); ok {
		t.Error("Off inside the window should be suppressed")
	}

	// Off after the window: confirmed.
	tr, ok = d.Observe(StateOff, t0.Add(300*time.Millisecond))
	if !ok || tr.To != StateOff {
		t.Fatalf("expected OFF confirmation, got %v ok=%v", tr, ok)
	}
	if tr.From != StateOn {
		t.Errorf("From: got %s, want ON", tr.From)
	}
}

func TestExactWindowBoundary(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDebouncer(300*time.Millisecond, t0)
	d.lastChange = t0

	if _, ok := d.Observe(StateOn, t0.Add(299*time.Millisecond)); ok {
		t.Error("should not confirm at 299ms")
	}
	if _, ok := d.Observe(StateOn, t0.Add(300*time.Millisecond)); !ok {
		t.Error("should confirm at exactly 300ms")
	}
}
