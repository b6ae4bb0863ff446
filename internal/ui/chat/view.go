// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/upload"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.focus == focusPicker {
		return m.renderPicker()
	}

	sidebar := m.renderSidebar()
	chat := lipgloss.JoinVertical(lipgloss.Left,
		m.vp.View(),
		m.renderInput(),
		m.renderStatus(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chat)
}

// syncViewport rebuilds the transcript content. follow pins the view to
// the bottom, used while a reply is streaming in.
func (m *Model) syncViewport(follow bool) {
	if !m.ready {
		return
	}
	m.vp.SetContent(m.renderTranscript())
	if follow || m.vp.AtBottom() {
		m.vp.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	msgs := m.store.Messages(m.store.CurrentID())
	if len(msgs) == 0 {
		return m.theme.ShortcutDesc.Render("Start a conversation. Your documents are one question away.")
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	return b.String()
}

func (m *Model) renderMessage(msg model.Message) string {
	width := m.vp.Width - 2
	if width < 10 {
		width = 10
	}
	text := lipgloss.NewStyle().Width(width).Render(msg.Text)

	switch msg.Sender {
	case model.SenderUser:
		return m.theme.UserLabel.Render("You") + "\n" + m.theme.UserText.Render(text)
	default:
		label := m.theme.BotLabel.Render("Assistant")
		if msg.State == model.StateStreaming {
			label += " " + m.spin.View()
		}
		return label + "\n" + m.theme.BotText.Render(text)
	}
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n")

	if m.focus == focusSidebar {
		b.WriteString(m.theme.SidebarSearch.Render(m.search.View()))
		b.WriteString("\n")
	}

	currentID := m.store.CurrentID()
	for i, meta := range m.metas {
		title := util.TruncateWidth(meta.Title, m.sidebarWidth-4)
		style := m.theme.SidebarItem
		if meta.ID == currentID {
			style = m.theme.SidebarItemSelected
		}
		if m.focus == focusSidebar && i == m.sidebarIndex {
			title = "> " + title
		}
		b.WriteString(style.Render(title))
		b.WriteString("\n")
		if meta.Preview != "" {
			snippet := util.TruncateWidth(meta.Preview, m.sidebarWidth-4)
			b.WriteString(m.theme.ShortcutDesc.Render("  " + snippet))
			b.WriteString("\n")
		}
	}

	return m.theme.Sidebar.Width(m.sidebarWidth).Height(m.height - 1).Render(b.String())
}

func (m *Model) renderInput() string {
	return m.theme.InputContainer.Width(m.vp.Width).Render(m.input.View())
}

func (m *Model) renderStatus() string {
	var parts []string

	if m.statusErr != "" {
		parts = append(parts, m.theme.StatusError.Render(util.TruncateRunes(m.statusErr, 80)))
	}
	if m.streaming {
		parts = append(parts, m.theme.StatusBar.Render(m.spin.View()+" streaming (esc to cancel)"))
	}

	snap := m.tracker.Snapshot()
	switch snap.Phase {
	case upload.PhaseRunning:
		parts = append(parts, m.theme.StatusUpload.Render(fmt.Sprintf("uploading %s %.0f%%", snap.FileName, snap.Fraction)))
	case upload.PhaseIndeterminate:
		parts = append(parts, m.theme.StatusUpload.Render("uploading "+snap.FileName+"..."))
	case upload.PhaseDone:
		parts = append(parts, m.theme.StatusUpload.Render("uploaded "+snap.FileName))
	case upload.PhaseFailed:
		parts = append(parts, m.theme.StatusError.Render("upload failed"))
	}

	if m.activeDoc != nil {
		name := m.activeDoc.Name
		if name == "" {
			name = m.activeDoc.ID
		}
		parts = append(parts, m.theme.ActiveDocBadge.Render("doc: "+name))
	}

	if len(parts) == 0 {
		parts = append(parts,
			m.theme.ShortcutKey.Render("C-n")+m.theme.ShortcutDesc.Render(" new  ")+
				m.theme.ShortcutKey.Render("C-o")+m.theme.ShortcutDesc.Render(" docs  ")+
				m.theme.ShortcutKey.Render("C-f")+m.theme.ShortcutDesc.Render(" search  ")+
				m.theme.ShortcutKey.Render("C-c")+m.theme.ShortcutDesc.Render(" quit"))
	}

	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}

func (m *Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Select a document"))
	b.WriteString("\n\n")

	render := func(i int, label string) {
		style := m.theme.PickerItem
		if i == m.pickerIndex {
			style = m.theme.PickerItemSelected
			label = "> " + label
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	render(0, "(no document)")
	for i, doc := range m.docs {
		label := doc.DisplayName
		if label == "" {
			label = doc.DocName
		}
		if !doc.Embedded {
			label += " (not processed)"
		}
		render(i+1, label)
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutDesc.Render("enter select · esc close"))
	return m.theme.PickerBox.Render(b.String())
}
