// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import "io"

// readBufSize is the chunk size for transport reads. Small enough to keep
// time-to-first-fragment low on slow streams.
const readBufSize = 4096

// =============================================================================
// READER
// =============================================================================

// Reader adapts an io.Reader (typically a streaming HTTP response body) into
// a sequence of event payloads. Each call to Next suspends until the next
// complete event is available or the stream ends.
//
// Like Framer, a Reader serves exactly one exchange.
type Reader struct {
	r      io.Reader
	framer *Framer
	queue  []string
	err    error
	buf    []byte
}

// NewReader creates a reader over one streaming response body.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:      r,
		framer: NewFramer(),
		buf:    make([]byte, readBufSize),
	}
}

// Next returns the next event payload in stream order. It returns io.EOF
// once the stream has ended and all buffered payloads were delivered; any
// other error means the transport failed mid-stream.
func (r *Reader) Next() (string, error) {
	for {
		if len(r.queue) > 0 {
			payload := r.queue[0]
			r.queue = r.queue[1:]
			return payload, nil
		}
		if r.err != nil {
			return "", r.err
		}

		n, err := r.r.Read(r.buf)
		if n > 0 {
			r.queue = append(r.queue, r.framer.Push(string(r.buf[:n]))...)
		}
		if err != nil {
			if err == io.EOF {
				// Drain whatever the producer left unterminated.
				r.queue = append(r.queue, r.framer.Flush()...)
			}
			r.err = err
		}
	}
}

// SawDone reports whether the [DONE] sentinel was observed on the stream.
func (r *Reader) SawDone() bool {
	return r.framer.SawDone()
}
