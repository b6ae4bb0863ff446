// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/exchange"
	"github.com/jeranaias/docchat-tui/internal/store"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/upload"
)

// focusArea identifies which pane receives keyboard input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusPicker
)

// eventBuffer bounds the UI event channel. Fragments are best-effort
// (each carries the full text, so drops are harmless); terminal events
// always fit because the buffer is far larger than their count.
const eventBuffer = 256

// Model is the root Bubble Tea model for the chat interface.
type Model struct {
	store   *store.Store
	ctrl    *exchange.Controller
	client  *api.Client
	tracker *upload.Tracker
	theme   *styles.Theme
	keys    KeyMap

	input    textinput.Model
	search   textinput.Model
	vp       viewport.Model
	spin     spinner.Model
	throttle *FlushThrottle

	// events carries messages from background goroutines into Update.
	events chan tea.Msg

	focus        focusArea
	width        int
	height       int
	sidebarWidth int
	ready        bool

	metas        []store.Meta
	sidebarIndex int

	docs        []api.DocumentInfo
	pickerIndex int
	activeDoc   *api.ActiveDoc

	streaming bool
	uploading bool
	statusErr string
}

// New assembles the chat model from its collaborators. sidebarWidth comes
// from config.
func New(st *store.Store, ctrl *exchange.Controller, client *api.Client, tracker *upload.Tracker, theme *styles.Theme, sidebarWidth int) *Model {
	input := textinput.New()
	input.Placeholder = "Ask about your documents... (/upload <path> to add one)"
	input.CharLimit = 4000
	input.Focus()

	search := textinput.New()
	search.Placeholder = "search chats"
	search.CharLimit = 100

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		store:        st,
		ctrl:         ctrl,
		client:       client,
		tracker:      tracker,
		theme:        theme,
		keys:         DefaultKeyMap(),
		input:        input,
		search:       search,
		spin:         spin,
		throttle:     NewFlushThrottle(30),
		events:       make(chan tea.Msg, eventBuffer),
		sidebarWidth: sidebarWidth,
		metas:        st.Metas(),
	}

	// Store mutations can originate off the UI loop (the exchange
	// goroutine), so they are mirrored through the event channel.
	st.Subscribe(func(ev store.Event) {
		m.post(StoreChangedMsg{Event: ev})
	})

	ctrl.OnFragment = func(conversationID, text string) {
		if m.throttle.Offer(text) {
			m.post(StreamFragmentMsg{ConversationID: conversationID, Text: text})
		}
	}

	return m
}

// post delivers a message to the UI loop without ever blocking a
// background goroutine. Fragment drops are safe; see eventBuffer.
func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// listen returns a command that waits for the next background event.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		m.listen(),
		m.loadDocumentsCmd(),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd runs one full exchange on its own goroutine.
func (m *Model) sendCmd(conversationID, query string) tea.Cmd {
	doc := m.activeDoc
	return func() tea.Msg {
		outcome := m.ctrl.Send(context.Background(), conversationID, query, doc)
		if text, ok := m.throttle.Drain(); ok {
			m.post(StreamFragmentMsg{ConversationID: conversationID, Text: text})
		}
		return StreamFinishedMsg{ConversationID: conversationID, Outcome: outcome}
	}
}

// uploadCmd transfers a PDF, feeding progress through the tracker.
func (m *Model) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.client.UploadPDF(context.Background(), path, func(fraction float64, indeterminate bool) {
			if indeterminate {
				m.tracker.SetIndeterminate()
			} else {
				m.tracker.SetFraction(fraction)
			}
			m.post(UploadProgressMsg{Snapshot: m.tracker.Snapshot()})
		})
		return UploadFinishedMsg{Result: result, Err: err}
	}
}

// loadDocumentsCmd fetches the backend document list.
func (m *Model) loadDocumentsCmd() tea.Cmd {
	return func() tea.Msg {
		docs, err := m.client.ListDocuments(context.Background())
		return DocumentsLoadedMsg{Docs: docs, Err: err}
	}
}

// refreshMetas re-reads the sidebar entries, applying the search filter.
func (m *Model) refreshMetas() {
	query := strings.TrimSpace(m.search.Value())
	if query == "" {
		m.metas = m.store.Metas()
	} else {
		m.metas = m.store.SearchTitles(query)
	}
	if m.sidebarIndex >= len(m.metas) {
		m.sidebarIndex = len(m.metas) - 1
	}
	if m.sidebarIndex < 0 {
		m.sidebarIndex = 0
	}
}
