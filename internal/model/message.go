// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Assistant"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE STATE
// =============================================================================

// MessageState is the lifecycle tag of a message.
//
// Only the trailing bot message of a conversation may be StateStreaming,
// and only while its response is still being assembled.
type MessageState string

const (
	// StateComplete marks an immutable, fully delivered message.
	StateComplete MessageState = "complete"
	// StateStreaming marks a bot message whose text is still growing.
	StateStreaming MessageState = "streaming"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a conversation log.
type Message struct {
	Sender    Sender       `json:"sender"`
	Text      string       `json:"text"`
	State     MessageState `json:"state"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewUserMessage creates a complete user message.
func NewUserMessage(text string) *Message {
	return &Message{
		Sender:    SenderUser,
		Text:      text,
		State:     StateComplete,
		Timestamp: time.Now(),
	}
}

// NewBotMessage creates a bot message in StateStreaming with the given
// initial text (the first fragment of an exchange).
func NewBotMessage(text string) *Message {
	return &Message{
		Sender:    SenderBot,
		Text:      text,
		State:     StateStreaming,
		Timestamp: time.Now(),
	}
}

// NewBotNotice creates a complete bot message, used for synthetic content
// such as the transport failure notice.
func NewBotNotice(text string) *Message {
	return &Message{
		Sender:    SenderBot,
		Text:      text,
		State:     StateComplete,
		Timestamp: time.Now(),
	}
}

// IsStreaming reports whether the message is still being assembled.
func (m *Message) IsStreaming() bool {
	return m.State == StateStreaming
}

// SetText replaces the message text. Valid only while streaming; the text
// is always the full reconstruction so far, never a delta.
func (m *Message) SetText(text string) {
	if m.State == StateStreaming {
		m.Text = text
	}
}

// Settle finalizes a streaming message, leaving its text exactly as last
// set. Settling a complete message is a no-op.
func (m *Message) Settle() {
	m.State = StateComplete
}

// Preview returns a truncated single-line preview of the message text.
func (m *Message) Preview(maxRunes int) string {
	text := strings.Join(strings.Fields(m.Text), " ")
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
