// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload tracks the progress of one document transfer for display.
//
// The tracker sits between the transport's byte-level progress callback
// (producer goroutine) and the render loop (consumer), so all access goes
// through a mutex and readers get value snapshots.
package upload

import "sync"

// Phase is the tracker's lifecycle position.
type Phase int

// Tracker phases. Indeterminate means a transfer is running but its total
// size is unknown, so no meaningful fraction exists.
const (
	PhaseInactive Phase = iota
	PhaseRunning
	PhaseIndeterminate
	PhaseDone
	PhaseFailed
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseRunning:
		return "running"
	case PhaseIndeterminate:
		return "indeterminate"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the tracker for rendering.
type Snapshot struct {
	Phase    Phase
	Fraction float64 // [0,100], meaningful only in PhaseRunning
	FileName string
	Err      error
}

// Tracker holds the state of the current transfer. Zero value is a tracker
// in PhaseInactive. Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	phase    Phase
	fraction float64
	fileName string
	err      error
}

// Start begins tracking a new transfer, resetting any previous outcome.
func (t *Tracker) Start(fileName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseRunning
	t.fraction = 0
	t.fileName = fileName
	t.err = nil
}

// SetFraction records transfer progress, clamped to [0,100]. Values arrive
// from the transport's counting reader. Ignored unless a transfer is
// running.
func (t *Tracker) SetFraction(fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != PhaseRunning && t.phase != PhaseIndeterminate {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 100 {
		fraction = 100
	}
	t.phase = PhaseRunning
	t.fraction = fraction
}

// SetIndeterminate marks the running transfer as having no known total.
func (t *Tracker) SetIndeterminate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != PhaseRunning && t.phase != PhaseIndeterminate {
		return
	}
	t.phase = PhaseIndeterminate
}

// Finish marks the transfer complete.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseDone
	t.fraction = 100
}

// Fail records a failed transfer with its cause.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseFailed
	t.err = err
}

// Reset returns the tracker to PhaseInactive. Fields are cleared
// individually; overwriting the struct would clobber the held mutex.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseInactive
	t.fraction = 0
	t.fileName = ""
	t.err = nil
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Phase:    t.phase,
		Fraction: t.fraction,
		FileName: t.fileName,
		Err:      t.err,
	}
}
