// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// TitleLimit is the maximum rune length of an auto-derived conversation
// title. Longer first messages are cut to this length and marked with an
// ellipsis.
const TitleLimit = 30

// DefaultTitle is the display title of a conversation before any message
// exists.
const DefaultTitle = "New Chat"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds one independent chat thread.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Ordered message log. Append-only except for the trailing streaming
	// bot message, which is mutated in place until it settles.
	Messages []*Message `json:"messages"`
}

// NewConversation creates an empty conversation with a fresh unique ID.
// IDs are opaque tokens, assigned once and never reused.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the log. If it is the first message
// and comes from the user, the conversation title is derived from its text.
func (c *Conversation) Append(msg *Message) {
	first := len(c.Messages) == 0
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()

	if first && msg.Sender == SenderUser {
		c.Title = DeriveTitle(msg.Text)
	}
}

// Trailing returns the last message, or nil if the log is empty.
func (c *Conversation) Trailing() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle builds a conversation title from the first user message:
// the first TitleLimit runes, with "..." appended when anything was cut.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > TitleLimit {
		return string(runes[:TitleLimit]) + "..."
	}
	return text
}

// Rename sets an explicit title, overriding derivation.
func (c *Conversation) Rename(title string) {
	c.Title = title
	c.UpdatedAt = time.Now()
}
