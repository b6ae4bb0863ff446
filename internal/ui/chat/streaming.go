// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"
)

// =============================================================================
// FLUSH THROTTLE
// =============================================================================

// FlushThrottle caps how often streaming fragments trigger a repaint.
// Backends can emit hundreds of fragments per second; repainting each one
// causes flicker and wasted CPU. Because every fragment carries the full
// text so far, skipped frames lose nothing: the next flush supersedes
// them.
//
// Thread-safety: fragments arrive on the exchange goroutine while Drain
// runs on the Bubble Tea loop, so all operations take the mutex.
type FlushThrottle struct {
	mu          sync.Mutex
	lastFlush   time.Time
	minInterval time.Duration
	pending     string
	dirty       bool
}

// NewFlushThrottle creates a throttle capped at maxFPS frames per second.
func NewFlushThrottle(maxFPS int) *FlushThrottle {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}
	return &FlushThrottle{
		minInterval: time.Second / time.Duration(maxFPS),
	}
}

// Offer records the latest full text and reports whether it should be
// rendered now. When the frame budget is exhausted the text is held as
// pending instead.
func (f *FlushThrottle) Offer(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastFlush) >= f.minInterval {
		f.lastFlush = time.Now()
		f.pending = ""
		f.dirty = false
		return true
	}
	f.pending = text
	f.dirty = true
	return false
}

// Drain returns any held text that was suppressed by the frame cap.
// Called when a stream finishes so the final state always renders.
func (f *FlushThrottle) Drain() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirty {
		return "", false
	}
	text := f.pending
	f.pending = ""
	f.dirty = false
	f.lastFlush = time.Now()
	return text, true
}
