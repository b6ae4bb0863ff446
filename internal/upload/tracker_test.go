// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"errors"
	"testing"
)

func TestTrackerLifecycle(t *testing.T) {
	var tr Tracker
	if got := tr.Snapshot(); got.Phase != PhaseInactive {
		t.Fatalf("zero value phase = %v, want inactive", got.Phase)
	}

	tr.Start("report.pdf")
	snap := tr.Snapshot()
	if snap.Phase != PhaseRunning || snap.FileName != "report.pdf" || snap.Fraction != 0 {
		t.Errorf("after Start: %+v", snap)
	}

	tr.SetFraction(42.5)
	if got := tr.Snapshot().Fraction; got != 42.5 {
		t.Errorf("Fraction = %v, want 42.5", got)
	}

	tr.Finish()
	snap = tr.Snapshot()
	if snap.Phase != PhaseDone || snap.Fraction != 100 {
		t.Errorf("after Finish: %+v", snap)
	}

	tr.Reset()
	if got := tr.Snapshot(); got.Phase != PhaseInactive || got.FileName != "" {
		t.Errorf("after Reset: %+v", got)
	}
}

func TestTrackerReusableAfterReset(t *testing.T) {
	var tr Tracker
	tr.Start("first.pdf")
	tr.SetFraction(30)
	tr.Reset()
	tr.Reset() // must stay safe when already inactive

	// The mutex must survive Reset: a full second lifecycle exercises it.
	tr.Start("second.pdf")
	tr.SetFraction(60)
	snap := tr.Snapshot()
	if snap.Phase != PhaseRunning || snap.FileName != "second.pdf" || snap.Fraction != 60 {
		t.Errorf("after restart: %+v", snap)
	}
	tr.Finish()
	if got := tr.Snapshot().Phase; got != PhaseDone {
		t.Errorf("phase = %v, want done", got)
	}
}

func TestTrackerClamping(t *testing.T) {
	var tr Tracker
	tr.Start("a.pdf")

	tr.SetFraction(-5)
	if got := tr.Snapshot().Fraction; got != 0 {
		t.Errorf("negative fraction clamped to %v, want 0", got)
	}
	tr.SetFraction(150)
	if got := tr.Snapshot().Fraction; got != 100 {
		t.Errorf("overlarge fraction clamped to %v, want 100", got)
	}
}

func TestTrackerIndeterminate(t *testing.T) {
	var tr Tracker
	tr.Start("a.pdf")
	tr.SetIndeterminate()
	if got := tr.Snapshot().Phase; got != PhaseIndeterminate {
		t.Fatalf("phase = %v, want indeterminate", got)
	}
	// Learning the size mid-transfer flips back to running.
	tr.SetFraction(10)
	snap := tr.Snapshot()
	if snap.Phase != PhaseRunning || snap.Fraction != 10 {
		t.Errorf("after fraction: %+v", snap)
	}
}

func TestTrackerFail(t *testing.T) {
	var tr Tracker
	tr.Start("a.pdf")
	cause := errors.New("boom")
	tr.Fail(cause)
	snap := tr.Snapshot()
	if snap.Phase != PhaseFailed || !errors.Is(snap.Err, cause) {
		t.Errorf("after Fail: %+v", snap)
	}
	// Progress after failure is ignored.
	tr.SetFraction(50)
	if got := tr.Snapshot().Phase; got != PhaseFailed {
		t.Errorf("phase mutated after failure: %v", got)
	}
}

func TestTrackerIgnoresProgressWhenInactive(t *testing.T) {
	var tr Tracker
	tr.SetFraction(50)
	if got := tr.Snapshot(); got.Phase != PhaseInactive || got.Fraction != 0 {
		t.Errorf("inactive tracker mutated: %+v", got)
	}
}
