// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for docchat-tui.
//
// This package contains the atomic file writer used by every durable write
// in the application, and rune/width-aware string truncation for display.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - TruncateRunes: UTF-8 safe rune-count truncation with ellipsis
//   - TruncateWidth: display-width truncation (CJK aware)
//
// # Usage
//
//	display := util.TruncateRunes(longText, 50)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
