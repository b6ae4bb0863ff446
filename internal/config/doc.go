// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading for docchat-tui.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.docchat/config.toml
//   - ~/.docchat/config.json
//   - Built-in defaults
//
// Environment overrides use the DOCCHAT_ prefix (DOCCHAT_SERVER_URL,
// DOCCHAT_DATA_DIR, DOCCHAT_THEME, DOCCHAT_DEBUG_LOG).
package config
