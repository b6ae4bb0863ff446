// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse frames server-sent event streams into payload fragments.
//
// The backend delivers assistant responses as a text/event-stream body.
// This package converts the raw chunked bytes of that body into discrete
// payload strings, one per protocol event, regardless of how the transport
// happens to split the bytes across reads.
//
// # Framing Rules
//
//   - An event ends at exactly two consecutive newlines ("\n\n").
//   - Within an event, lines may end in "\n" or "\r\n".
//   - Every line starting with "data:" contributes to the payload; one
//     leading space after the tag is stripped, all other whitespace is
//     preserved. Multiple data lines are joined with "\n".
//   - Events with an empty payload are dropped.
//   - The literal payload "[DONE]" marks end-of-stream; it is reported via
//     SawDone and never surfaced as a fragment. The physical end of the
//     transport stream remains the authoritative completion signal.
//
// # Key Types
//
//   - Framer: push-based framing over arbitrarily split text chunks
//   - Reader: io.Reader adapter that yields one fragment per call
//
// A Framer (and therefore a Reader) is single-use: it carries state for
// exactly one exchange and is not restartable.
package sse
