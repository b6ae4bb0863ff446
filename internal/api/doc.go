// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the document assistant backend.
//
// The backend is opaque: it accepts a query (optionally scoped to one
// document and carrying a session ID for continuity) and answers with a
// text/event-stream body that this package exposes as a fragment stream.
// It also handles PDF uploads with genuine byte-level progress and lists
// the documents available for scoping.
//
// # Key Types
//
//   - Client: shared client with connection pooling and a send throttle
//   - ChatStreamRequest / Stream: one streaming exchange
//   - ActiveDoc: the optional document binding (ID and name mutually
//     exclusive on the wire)
//   - APIError: non-success HTTP responses
package api
