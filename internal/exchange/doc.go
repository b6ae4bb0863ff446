// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange orchestrates one streaming question/answer exchange.
//
// A Controller owns the lifecycle of a single in-flight exchange: it records
// the user message, opens the transport stream, feeds fragments through an
// Assembler into the conversation store, and settles the trailing bot
// message on every exit path (completion, cancellation, transport failure).
//
// # Key Types
//
//   - Controller: the state machine (Idle, Sending, Streaming, terminal)
//   - Assembler: incremental reconstruction of one bot message
//
// # Lifecycle
//
// Only one exchange may be in flight; a concurrent Send returns
// ErrExchangeInFlight. Cancellation before the first fragment records
// nothing; cancellation mid-stream keeps the partial text and settles it
// silently. A transport failure settles the partial text and records one
// fixed failure notice. Every path releases the transport handle and
// returns the controller to Idle.
package exchange
