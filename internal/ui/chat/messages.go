// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/exchange"
	"github.com/jeranaias/docchat-tui/internal/store"
	"github.com/jeranaias/docchat-tui/internal/upload"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamFragmentMsg carries the full reply text assembled so far. Each
// fragment supersedes the previous one, so dropped frames never lose
// content.
type StreamFragmentMsg struct {
	ConversationID string
	Text           string
}

// StreamFinishedMsg signals that the in-flight exchange reached a terminal
// state.
type StreamFinishedMsg struct {
	ConversationID string
	Outcome        exchange.Outcome
}

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg mirrors a conversation store mutation into the UI loop.
type StoreChangedMsg struct {
	Event store.Event
}

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// UploadProgressMsg carries a transfer progress snapshot.
type UploadProgressMsg struct {
	Snapshot upload.Snapshot
}

// UploadFinishedMsg signals an upload outcome. On success the uploaded
// document becomes the active document.
type UploadFinishedMsg struct {
	Result *api.UploadResult
	Err    error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg signals that the config file changed on disk and
// display preferences should be re-applied.
type ConfigReloadedMsg struct {
	Theme string
}

// =============================================================================
// DOCUMENT MESSAGES
// =============================================================================

// DocumentsLoadedMsg delivers the backend document list for the picker.
type DocumentsLoadedMsg struct {
	Docs []api.DocumentInfo
	Err  error
}
