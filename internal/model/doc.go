// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation is an ordered log of Messages. User messages are created
// complete and never change. Bot messages begin in StateStreaming while the
// response is reconstructed fragment by fragment, then settle into
// StateComplete and become immutable. The streaming flag is a typed state
// tag rather than a loose boolean so the "at most one trailing streaming
// message" rule is visible in the type.
package model
