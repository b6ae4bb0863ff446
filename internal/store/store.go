// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// collectionKey is the fixed KV key holding the serialized conversation
// collection.
const collectionKey = "conversations"

// sessionKey derives the KV key caching the backend session ID for one
// conversation.
func sessionKey(conversationID string) string {
	return "session:" + conversationID
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when an operation names an unknown
// conversation. Use errors.Is to check for it.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind classifies a store mutation for observers.
type EventKind int

const (
	// KindConversations: the set or ordering of conversations changed.
	KindConversations EventKind = iota
	// KindMessages: a conversation's message log changed.
	KindMessages
	// KindSelection: the current conversation changed.
	KindSelection
)

// Event describes one store mutation.
type Event struct {
	Kind           EventKind
	ConversationID string
}

// =============================================================================
// METADATA
// =============================================================================

// previewLimit is the rune budget for the sidebar's last-message snippet.
const previewLimit = 40

// Meta is a lightweight, copyable view of a conversation for listing.
type Meta struct {
	ID           string
	Title        string
	Preview      string
	MessageCount int
	UpdatedAt    time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store owns all conversation state. One mutex serializes every mutation,
// making the store the single writer of message state.
type Store struct {
	mu sync.Mutex
	kv KV

	// Ordered, front = most recent creation.
	conversations []*model.Conversation
	currentID     string

	// Backend session bindings, conversation ID -> session ID.
	sessions map[string]string
	// Session bindings that failed to persist, retried on next mutation.
	pendingSessions map[string]string

	subs []func(Event)
}

// New creates a store over the given durable backend. Call Restore before
// first use.
func New(kv KV) *Store {
	return &Store{
		kv:              kv,
		sessions:        make(map[string]string),
		pendingSessions: make(map[string]string),
	}
}

// Subscribe registers an observer called after each mutation. Callbacks run
// outside the store lock and must not assume any ordering between them.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// emit delivers an event to all subscribers, outside the lock.
func (s *Store) emit(ev Event) {
	s.mu.Lock()
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// =============================================================================
// RESTORE / PERSIST
// =============================================================================

// Restore loads the persisted collection. With no (or unreadable) persisted
// data it starts fresh with one empty conversation. A message left
// streaming by a crash is settled on load; its partial text survives.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, err := s.kv.Get(collectionKey); err == nil {
		var convs []*model.Conversation
		if err := json.Unmarshal(data, &convs); err == nil {
			s.conversations = convs
		}
	}

	for _, c := range s.conversations {
		if last := c.Trailing(); last != nil && last.IsStreaming() {
			last.Settle()
		}
		if data, err := s.kv.Get(sessionKey(c.ID)); err == nil {
			s.sessions[c.ID] = string(data)
		}
	}

	if len(s.conversations) == 0 {
		s.createLocked()
	} else {
		s.currentID = s.conversations[0].ID
	}
	s.persistLocked()
}

// persistLocked writes the full collection through to the KV backend and
// retries any session bindings that previously failed. Persistence failure
// never blocks the in-memory state; the next mutation tries again.
// Caller must hold s.mu.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.conversations)
	if err == nil {
		// Failure is deliberately swallowed: the write-through repeats on
		// every mutation, so a transient storage outage self-heals.
		_ = s.kv.Put(collectionKey, data)
	}

	for id, session := range s.pendingSessions {
		if s.kv.Put(sessionKey(id), []byte(session)) == nil {
			delete(s.pendingSessions, id)
		}
	}
}

// =============================================================================
// THREAD MANAGEMENT
// =============================================================================

// Create selects an existing empty conversation if one exists; otherwise it
// allocates a fresh conversation at the front of the collection. Either way
// the result becomes current. Returns the conversation ID.
func (s *Store) Create() string {
	s.mu.Lock()
	id := s.createLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: KindConversations, ConversationID: id})
	s.emit(Event{Kind: KindSelection, ConversationID: id})
	return id
}

// createLocked implements Create. Caller must hold s.mu.
func (s *Store) createLocked() string {
	for _, c := range s.conversations {
		if c.IsEmpty() {
			s.currentID = c.ID
			return c.ID
		}
	}

	conv := model.NewConversation()
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.currentID = conv.ID
	return conv.ID
}

// Select makes the named conversation current.
func (s *Store) Select(conversationID string) error {
	s.mu.Lock()
	if s.findLocked(conversationID) == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	s.currentID = conversationID
	s.mu.Unlock()

	s.emit(Event{Kind: KindSelection, ConversationID: conversationID})
	return nil
}

// Rename sets an explicit title on a conversation.
func (s *Store) Rename(conversationID, title string) error {
	s.mu.Lock()
	c := s.findLocked(conversationID)
	if c == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	c.Rename(title)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: KindConversations, ConversationID: conversationID})
	return nil
}

// Delete removes a conversation and its session binding. Deleting the
// current conversation selects the first remaining one, or creates a fresh
// empty conversation when none remain.
func (s *Store) Delete(conversationID string) error {
	s.mu.Lock()
	idx := -1
	for i, c := range s.conversations {
		if c.ID == conversationID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	delete(s.sessions, conversationID)
	delete(s.pendingSessions, conversationID)
	_ = s.kv.Delete(sessionKey(conversationID))

	selected := s.currentID
	if s.currentID == conversationID {
		if len(s.conversations) > 0 {
			s.currentID = s.conversations[0].ID
		} else {
			s.createLocked()
		}
		selected = s.currentID
	}
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: KindConversations, ConversationID: conversationID})
	s.emit(Event{Kind: KindSelection, ConversationID: selected})
	return nil
}

// =============================================================================
// MESSAGE MUTATION
// =============================================================================

// Append adds a message to the end of a conversation's log. The first user
// message also derives the conversation title.
func (s *Store) Append(conversationID string, msg *model.Message) error {
	s.mu.Lock()
	c := s.findLocked(conversationID)
	if c == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	c.Append(msg)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: KindMessages, ConversationID: conversationID})
	return nil
}

// UpsertTrailingBot is the only mutation path used while a response is in
// flight. If the trailing message is a streaming bot message its text is
// replaced with fullText (the complete reconstruction so far); otherwise a
// new streaming bot message is appended. Either way at most one trailing
// streaming message can exist afterwards.
func (s *Store) UpsertTrailingBot(conversationID, fullText string) error {
	s.mu.Lock()
	c := s.findLocked(conversationID)
	if c == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	last := c.Trailing()
	if last != nil && last.Sender == model.SenderBot && last.IsStreaming() {
		last.SetText(fullText)
		c.UpdatedAt = time.Now()
	} else {
		c.Append(model.NewBotMessage(fullText))
	}
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: KindMessages, ConversationID: conversationID})
	return nil
}

// SettleTrailing clears the streaming state of the trailing message,
// leaving its text exactly as last set. Idempotent; settling a conversation
// with no streaming trailer is a no-op.
func (s *Store) SettleTrailing(conversationID string) error {
	s.mu.Lock()
	c := s.findLocked(conversationID)
	if c == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	last := c.Trailing()
	if last == nil || !last.IsStreaming() {
		s.mu.Unlock()
		return nil
	}
	last.Settle()
	c.UpdatedAt = time.Now()
	s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: KindMessages, ConversationID: conversationID})
	return nil
}

// =============================================================================
// SESSION BINDINGS
// =============================================================================

// BindSession caches the backend-assigned session ID for a conversation.
// The binding is write-once: a conversation keeps its first session ID.
func (s *Store) BindSession(conversationID, sessionID string) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, bound := s.sessions[conversationID]; bound {
		return
	}
	s.sessions[conversationID] = sessionID
	if s.kv.Put(sessionKey(conversationID), []byte(sessionID)) != nil {
		s.pendingSessions[conversationID] = sessionID
	}
}

// SessionID returns the cached backend session ID for a conversation, or
// "" when none was ever assigned.
func (s *Store) SessionID(conversationID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[conversationID]
}

// =============================================================================
// READ ACCESS
// =============================================================================

// CurrentID returns the ID of the selected conversation.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Metas returns listing metadata for every conversation, in collection
// order (front = most recent creation).
func (s *Store) Metas() []Meta {
	s.mu.Lock()
	defer s.mu.Unlock()

	metas := make([]Meta, 0, len(s.conversations))
	for _, c := range s.conversations {
		preview := ""
		if last := c.Trailing(); last != nil {
			preview = last.Preview(previewLimit)
		}
		metas = append(metas, Meta{
			ID:           c.ID,
			Title:        c.Title,
			Preview:      preview,
			MessageCount: c.MessageCount(),
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return metas
}

// SearchTitles returns metadata for conversations whose title contains the
// query, case-insensitively. An empty query matches everything.
func (s *Store) SearchTitles(query string) []Meta {
	all := s.Metas()
	if query == "" {
		return all
	}

	query = strings.ToLower(query)
	var results []Meta
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Title), query) {
			results = append(results, m)
		}
	}
	return results
}

// Messages returns value copies of a conversation's message log, safe to
// read while the exchange goroutine keeps mutating the store.
func (s *Store) Messages(conversationID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(conversationID)
	if c == nil {
		return nil
	}
	msgs := make([]model.Message, len(c.Messages))
	for i, m := range c.Messages {
		msgs[i] = *m
	}
	return msgs
}

// Title returns a conversation's current title.
func (s *Store) Title(conversationID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.findLocked(conversationID); c != nil {
		return c.Title
	}
	return ""
}

// findLocked returns the conversation with the given ID, or nil.
// Caller must hold s.mu.
func (s *Store) findLocked(conversationID string) *model.Conversation {
	for _, c := range s.conversations {
		if c.ID == conversationID {
			return c
		}
	}
	return nil
}
