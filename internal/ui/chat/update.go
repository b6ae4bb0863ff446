// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/api"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// uploadCommand is the input prefix that triggers a document upload.
const uploadCommand = "/upload "

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case StreamFragmentMsg:
		if msg.ConversationID == m.store.CurrentID() {
			m.syncViewport(true)
		}
		return m, m.listen()
	case StreamFinishedMsg:
		return m.handleStreamFinished(msg)
	case StoreChangedMsg:
		m.refreshMetas()
		m.syncViewport(false)
		return m, m.listen()
	case UploadProgressMsg:
		return m, m.listen()
	case UploadFinishedMsg:
		return m.handleUploadFinished(msg)
	case DocumentsLoadedMsg:
		if msg.Err == nil {
			m.docs = msg.Docs
		}
		return m, m.listen()
	case ConfigReloadedMsg:
		m.theme = styles.NewTheme(msg.Theme)
		m.theme.SetSize(m.width, m.height)
		m.syncViewport(false)
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	chatWidth := m.width - m.sidebarWidth - 3
	if chatWidth < 20 {
		chatWidth = 20
	}
	vpHeight := m.height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.vp = viewport.New(chatWidth, vpHeight)
		m.ready = true
	} else {
		m.vp.Width = chatWidth
		m.vp.Height = vpHeight
	}
	m.input.Width = chatWidth - 4
	m.syncViewport(false)
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.focus == focusPicker {
			m.focus = focusInput
			return m, nil
		}
		if m.streaming {
			m.ctrl.Cancel()
			return m, nil
		}
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.search.Blur()
			m.input.Focus()
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		// Create selects its result, reusing an existing empty chat.
		m.store.Create()
		m.refreshMetas()
		m.syncViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.store.Delete(m.store.CurrentID())
		m.refreshMetas()
		m.syncViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.Documents):
		if m.focus == focusPicker {
			m.focus = focusInput
		} else {
			m.focus = focusPicker
			m.pickerIndex = 0
		}
		return m, m.loadDocumentsCmd()

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSidebar
		m.input.Blur()
		m.search.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.search.Blur()
			m.input.Focus()
		} else {
			m.focus = focusSidebar
			m.input.Blur()
		}
		return m, nil
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusPicker:
		return m.handlePickerKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	if key.Matches(msg, m.keys.Up) || key.Matches(msg, m.keys.Down) ||
		key.Matches(msg, m.keys.PageUp) || key.Matches(msg, m.keys.PageDown) {
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.sidebarIndex < len(m.metas)-1 {
			m.sidebarIndex++
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.sidebarIndex < len(m.metas) {
			m.store.Select(m.metas[m.sidebarIndex].ID)
			m.syncViewport(false)
		}
		m.focus = focusInput
		m.search.Blur()
		m.input.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refreshMetas()
	return m, cmd
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case key.Matches(msg, m.keys.Down):
		// Index 0 is "no document"; entries follow.
		if m.pickerIndex < len(m.docs) {
			m.pickerIndex++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.pickerIndex == 0 {
			m.activeDoc = nil
		} else {
			doc := m.docs[m.pickerIndex-1]
			m.activeDoc = &api.ActiveDoc{ID: doc.ID, Name: doc.DocName}
		}
		m.focus = focusInput
	}
	return m, nil
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, uploadCommand) {
		path := strings.TrimSpace(strings.TrimPrefix(text, uploadCommand))
		if path == "" || m.uploading {
			return m, nil
		}
		m.input.SetValue("")
		m.uploading = true
		m.statusErr = ""
		m.tracker.Start(path)
		return m, tea.Batch(m.uploadCmd(path), m.listen())
	}

	if m.streaming || m.ctrl.Busy() {
		return m, nil
	}

	m.input.SetValue("")
	m.streaming = true
	m.statusErr = ""
	return m, m.sendCmd(m.store.CurrentID(), text)
}

func (m *Model) handleStreamFinished(msg StreamFinishedMsg) (tea.Model, tea.Cmd) {
	m.streaming = false
	if msg.Outcome.Err != nil {
		m.statusErr = msg.Outcome.Err.Error()
	}
	m.refreshMetas()
	m.syncViewport(true)
	return m, nil
}

func (m *Model) handleUploadFinished(msg UploadFinishedMsg) (tea.Model, tea.Cmd) {
	m.uploading = false
	if msg.Err != nil {
		m.tracker.Fail(msg.Err)
		m.statusErr = msg.Err.Error()
		return m, m.listen()
	}
	m.tracker.Finish()
	m.activeDoc = &api.ActiveDoc{ID: msg.Result.DocID, Name: msg.Result.DocName}
	return m, tea.Batch(m.loadDocumentsCmd(), m.listen())
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}
