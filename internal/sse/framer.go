// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import "strings"

// doneSentinel is the payload the backend emits as an explicit, informational
// end-of-stream marker. It carries no displayable content.
const doneSentinel = "[DONE]"

// =============================================================================
// FRAMER
// =============================================================================

// Framer splits a stream of decoded text chunks into event payloads.
//
// Chunk boundaries carry no meaning: a single event may span many chunks and
// one chunk may complete many events. The Framer keeps the unterminated tail
// of the stream in a carry-over buffer between calls.
//
// A Framer is single-use. After Flush, further input is ignored.
type Framer struct {
	carry   string
	done    bool
	flushed bool
}

// NewFramer creates a framer for one exchange.
func NewFramer() *Framer {
	return &Framer{}
}

// Push feeds one chunk of decoded text and returns the payloads of every
// event completed by it, in stream order. Events with no payload and the
// [DONE] sentinel produce no output.
func (f *Framer) Push(chunk string) []string {
	if f.flushed {
		return nil
	}

	f.carry += chunk

	var payloads []string
	for {
		end := strings.Index(f.carry, "\n\n")
		if end == -1 {
			break
		}
		raw := f.carry[:end]
		f.carry = f.carry[end+2:]

		if payload, ok := f.extract(raw); ok {
			payloads = append(payloads, payload)
		}
	}
	return payloads
}

// Flush consumes the remaining carry-over as a final event. Call it once,
// when the transport signals end-of-stream; a well-formed producer leaves
// nothing behind, but a stream cut after its last data line still yields
// that payload.
func (f *Framer) Flush() []string {
	if f.flushed {
		return nil
	}
	f.flushed = true

	raw := f.carry
	f.carry = ""
	if raw == "" {
		return nil
	}
	if payload, ok := f.extract(raw); ok {
		return []string{payload}
	}
	return nil
}

// SawDone reports whether the [DONE] sentinel was observed. The sentinel is
// informational; callers must still treat transport end-of-stream as the
// authoritative completion signal.
func (f *Framer) SawDone() bool {
	return f.done
}

// extract builds the payload of one raw event. It returns ok=false for
// events that must be dropped: empty payloads, events with no parseable
// data lines, and the [DONE] sentinel.
func (f *Framer) extract(raw string) (string, bool) {
	var dataLines []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, "data:") {
			// Other SSE fields (event:, id:, retry:, comments) are ignored.
			continue
		}
		rest := line[len("data:"):]
		// Strip exactly one separator space; deeper whitespace belongs to
		// the generated text and must survive.
		if strings.HasPrefix(rest, " ") {
			rest = rest[1:]
		}
		dataLines = append(dataLines, rest)
	}

	if len(dataLines) == 0 {
		return "", false
	}

	payload := strings.Join(dataLines, "\n")
	if payload == "" {
		return "", false
	}
	if payload == doneSentinel {
		f.done = true
		return "", false
	}
	return payload, true
}
