// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store is the single source of truth for conversation state.
//
// The Store owns every Conversation and Message instance. All writers - the
// user-send path and the streaming assembler - go through its operations,
// which are serialized by one mutex so the "at most one trailing streaming
// message" invariant holds under interleaving.
//
// # Operations
//
//   - Create: idempotent empty-conversation policy
//   - Append / UpsertTrailingBot / SettleTrailing: message mutation paths
//   - Select / Rename / Delete: thread management
//   - BindSession / SessionID: write-once backend session cache
//
// # Persistence
//
// Every mutation writes the full collection through to a durable key-value
// backend (SQLite in production, memory in tests). A failed write never
// blocks the in-memory update; it is retried on the next mutation. The
// collection is restored once at startup.
//
// # Observation
//
// Subscribers registered with Subscribe are notified after each mutation,
// outside the store lock, so a rendering layer can repaint without the core
// knowing anything about it.
package store
