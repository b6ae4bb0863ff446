// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat interface for docchat-tui.
//
// The Model renders a conversation sidebar with title search, the active
// conversation transcript, an input line, and a status bar showing upload
// progress and the active document. Streaming responses arrive from the
// exchange goroutine over an internal channel and are rendered at a capped
// frame rate.
//
// # Key Types
//
//   - Model: the root Bubble Tea model
//   - KeyMap: keyboard bindings
//   - FlushThrottle: frame-rate cap for streaming repaints
package chat
