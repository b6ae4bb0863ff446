// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"testing"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func newTestStore(t *testing.T) (*Store, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	s := New(kv)
	s.Restore()
	return s, kv
}

// countStreaming returns the number of streaming messages and whether the
// trailing message is the streaming one.
func countStreaming(msgs []model.Message) (count int, trailingIsStreaming bool) {
	for _, m := range msgs {
		if m.State == model.StateStreaming {
			count++
		}
	}
	if len(msgs) > 0 && msgs[len(msgs)-1].State == model.StateStreaming {
		trailingIsStreaming = true
	}
	return count, trailingIsStreaming
}

// =============================================================================
// CREATE / SELECT / DELETE
// =============================================================================

func TestRestoreCreatesFreshConversation(t *testing.T) {
	s, _ := newTestStore(t)

	metas := s.Metas()
	if len(metas) != 1 {
		t.Fatalf("conversations = %d, want 1", len(metas))
	}
	if s.CurrentID() != metas[0].ID {
		t.Error("fresh conversation should be selected")
	}
}

func TestMetasCarryTrailingPreview(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()

	if got := s.Metas()[0].Preview; got != "" {
		t.Errorf("empty conversation preview = %q, want empty", got)
	}

	if err := s.Append(id, model.NewUserMessage("what is in the report?")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.UpsertTrailingBot(id, "The report covers\nquarterly results."); err != nil {
		t.Fatalf("UpsertTrailingBot failed: %v", err)
	}

	got := s.Metas()[0].Preview
	if got != "The report covers quarterly results." {
		t.Errorf("preview = %q, want flattened trailing text", got)
	}
}

func TestCreateIsIdempotentWhileEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	first := s.CurrentID()
	if got := s.Create(); got != first {
		t.Errorf("Create returned %q, want existing empty %q", got, first)
	}
	if len(s.Metas()) != 1 {
		t.Errorf("conversations = %d, want 1", len(s.Metas()))
	}

	// Once the conversation has a message, Create allocates a new one at
	// the front.
	if err := s.Append(first, model.NewUserMessage("hi")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	second := s.Create()
	if second == first {
		t.Error("Create should allocate a new conversation")
	}
	metas := s.Metas()
	if len(metas) != 2 || metas[0].ID != second {
		t.Errorf("new conversation must be at the front, metas=%v", metas)
	}
	if s.CurrentID() != second {
		t.Error("new conversation must be selected")
	}
}

func TestSelect(t *testing.T) {
	s, _ := newTestStore(t)
	first := s.CurrentID()
	s.Append(first, model.NewUserMessage("hi"))
	second := s.Create()

	if err := s.Select(first); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if s.CurrentID() != first {
		t.Error("Select did not change current conversation")
	}
	if err := s.Select("nope"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Select unknown = %v, want ErrConversationNotFound", err)
	}
	_ = second
}

func TestDeleteSelectsFirstRemaining(t *testing.T) {
	s, _ := newTestStore(t)
	first := s.CurrentID()
	s.Append(first, model.NewUserMessage("one"))
	second := s.Create()
	s.Append(second, model.NewUserMessage("two"))

	// Current is second (front). Deleting it selects the first remaining.
	if err := s.Delete(second); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.CurrentID() != first {
		t.Errorf("current = %q, want %q", s.CurrentID(), first)
	}
}

func TestDeleteLastConversationCreatesFresh(t *testing.T) {
	s, _ := newTestStore(t)
	only := s.CurrentID()

	if err := s.Delete(only); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	metas := s.Metas()
	if len(metas) != 1 {
		t.Fatalf("conversations = %d, want 1 fresh", len(metas))
	}
	if metas[0].ID == only {
		t.Error("fresh conversation must have a new ID")
	}
	if s.CurrentID() != metas[0].ID {
		t.Error("fresh conversation must be selected")
	}
}

func TestDeleteUnselectedKeepsCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	first := s.CurrentID()
	s.Append(first, model.NewUserMessage("one"))
	second := s.Create()

	if err := s.Delete(first); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.CurrentID() != second {
		t.Errorf("current = %q, want %q", s.CurrentID(), second)
	}
}

// =============================================================================
// APPEND / TITLES
// =============================================================================

func TestAppendDerivesTitleFromFirstUserMessage(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()

	long := "What is the capital of a country with more than thirty-one characters in this sentence?"
	s.Append(id, model.NewUserMessage(long))

	want := string([]rune(long)[:30]) + "..."
	if got := s.Title(id); got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestRename(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()
	s.Append(id, model.NewUserMessage("derive"))

	if err := s.Rename(id, "Better Title"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got := s.Title(id); got != "Better Title" {
		t.Errorf("Title = %q", got)
	}
}

// =============================================================================
// UPSERT / SETTLE
// =============================================================================

func TestUpsertTrailingBot(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()
	s.Append(id, model.NewUserMessage("question"))

	// First upsert appends a streaming bot message.
	s.UpsertTrailingBot(id, "Hel")
	msgs := s.Messages(id)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[1].Text != "Hel" || msgs[1].State != model.StateStreaming {
		t.Errorf("trailing = %+v", msgs[1])
	}

	// Subsequent upserts replace the text in place.
	s.UpsertTrailingBot(id, "Hello wo")
	s.UpsertTrailingBot(id, "Hello world")
	msgs = s.Messages(id)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d after replacements, want 2", len(msgs))
	}
	if msgs[1].Text != "Hello world" {
		t.Errorf("trailing text = %q", msgs[1].Text)
	}

	if n, trailing := countStreaming(msgs); n != 1 || !trailing {
		t.Errorf("streaming count = %d (trailing=%v), want exactly one trailing", n, trailing)
	}
}

func TestSettleTrailingIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()
	s.Append(id, model.NewUserMessage("q"))
	s.UpsertTrailingBot(id, "partial answer")

	if err := s.SettleTrailing(id); err != nil {
		t.Fatalf("SettleTrailing failed: %v", err)
	}
	after := s.Messages(id)

	if err := s.SettleTrailing(id); err != nil {
		t.Fatalf("second SettleTrailing failed: %v", err)
	}
	again := s.Messages(id)

	if len(after) != len(again) || after[1] != again[1] {
		t.Error("settlement must be idempotent")
	}
	if n, _ := countStreaming(again); n != 0 {
		t.Errorf("streaming count = %d after settle", n)
	}
	if again[1].Text != "partial answer" {
		t.Errorf("settled text = %q, content must not change", again[1].Text)
	}
}

func TestSettleTrailingWithoutStreamingIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()
	s.Append(id, model.NewUserMessage("only user message"))

	if err := s.SettleTrailing(id); err != nil {
		t.Fatalf("SettleTrailing failed: %v", err)
	}
	msgs := s.Messages(id)
	if len(msgs) != 1 || msgs[0].State != model.StateComplete {
		t.Error("no-op settle changed state")
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestPersistenceRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv)
	s.Restore()

	id := s.CurrentID()
	s.Append(id, model.NewUserMessage("persist me"))
	s.UpsertTrailingBot(id, "answer")
	s.SettleTrailing(id)
	s.BindSession(id, "sess-1")

	// A second store over the same KV sees everything.
	restored := New(kv)
	restored.Restore()

	msgs := restored.Messages(id)
	if len(msgs) != 2 {
		t.Fatalf("restored messages = %d, want 2", len(msgs))
	}
	if msgs[1].Text != "answer" {
		t.Errorf("restored text = %q", msgs[1].Text)
	}
	if got := restored.SessionID(id); got != "sess-1" {
		t.Errorf("restored session = %q, want sess-1", got)
	}
	if restored.Title(id) != "persist me" {
		t.Errorf("restored title = %q", restored.Title(id))
	}
}

func TestRestoreSettlesStrayStreamingMessage(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv)
	s.Restore()
	id := s.CurrentID()
	s.Append(id, model.NewUserMessage("q"))
	// Simulate a crash mid-stream: the trailing message persists as
	// streaming because every mutation writes through.
	s.UpsertTrailingBot(id, "partial")

	restored := New(kv)
	restored.Restore()
	msgs := restored.Messages(id)
	if msgs[1].State != model.StateComplete {
		t.Error("stray streaming message must settle on restore")
	}
	if msgs[1].Text != "partial" {
		t.Errorf("partial text lost: %q", msgs[1].Text)
	}
}

func TestPersistenceFailureDoesNotBlockMutations(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv)
	s.Restore()
	id := s.CurrentID()

	kv.FailPuts = true
	if err := s.Append(id, model.NewUserMessage("still works")); err != nil {
		t.Fatalf("Append failed under storage outage: %v", err)
	}
	s.BindSession(id, "sess-2")
	if len(s.Messages(id)) != 1 {
		t.Fatal("in-memory state must update despite persistence failure")
	}

	// Storage recovers; the next mutation writes everything through,
	// including the pending session binding.
	kv.FailPuts = false
	s.UpsertTrailingBot(id, "answer")

	restored := New(kv)
	restored.Restore()
	if len(restored.Messages(id)) != 2 {
		t.Error("recovered persistence should include earlier mutation")
	}
	if restored.SessionID(id) != "sess-2" {
		t.Errorf("pending session binding not flushed, got %q", restored.SessionID(id))
	}
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestBindSessionWriteOnce(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()

	s.BindSession(id, "first")
	s.BindSession(id, "second")
	if got := s.SessionID(id); got != "first" {
		t.Errorf("SessionID = %q, want first", got)
	}

	s.BindSession(id, "")
	if got := s.SessionID(id); got != "first" {
		t.Errorf("empty binding must be ignored, got %q", got)
	}
}

// =============================================================================
// SEARCH / OBSERVERS
// =============================================================================

func TestSearchTitles(t *testing.T) {
	s, _ := newTestStore(t)
	first := s.CurrentID()
	s.Append(first, model.NewUserMessage("Firewall rules overview"))
	second := s.Create()
	s.Append(second, model.NewUserMessage("Password policy"))

	results := s.SearchTitles("firewall")
	if len(results) != 1 || results[0].ID != first {
		t.Errorf("SearchTitles(firewall) = %v", results)
	}
	if got := len(s.SearchTitles("")); got != 2 {
		t.Errorf("empty query matched %d, want 2", got)
	}
}

func TestSubscribeReceivesMutationEvents(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.CurrentID()

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	s.Append(id, model.NewUserMessage("hello"))
	if len(events) == 0 {
		t.Fatal("no events delivered")
	}
	if events[len(events)-1].Kind != KindMessages || events[len(events)-1].ConversationID != id {
		t.Errorf("unexpected event %+v", events[len(events)-1])
	}
}
