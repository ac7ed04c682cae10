// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end of gemclone.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemclone/internal/chat"
	"github.com/jeranaias/gemclone/internal/commands"
	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/ui/styles"
)

const (
	headerHeight = 2
	statusHeight = 1
	inputHeight  = 5 // textarea plus border
)

// =============================================================================
// KEYS
// =============================================================================

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sidebarFocus {
		return m.updateSidebar(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Stop):
		if !m.orch.Stop() {
			m.setNotice("", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.orch.SetInput(m.input.Value())
		return m, m.execute("/new")

	case key.Matches(msg, m.keys.ToggleThinking):
		m.orch.SetInput(m.input.Value())
		return m, m.execute("/think")

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.layout()
		m.refresh()
		if m.showSidebar {
			return m, m.loadSessions()
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.tab()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.setNotice("", false)

	if commands.IsCommand(text) {
		m.input.Reset()
		m.orch.SetInput("")
		return m, m.execute(text)
	}

	if m.snap.State == chat.Streaming {
		m.setNotice("Wait for the reply to finish, or press esc to stop it", true)
		return m, nil
	}
	m.orch.SetInput(text)
	m.viewport.GotoBottom()
	return m, m.send()
}

// tab completes a slash command, or moves focus to the open sidebar.
func (m Model) tab() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if commands.IsCommand(value) {
		matches := m.completer.Complete(value)
		switch len(matches) {
		case 0:
		case 1:
			m.input.SetValue(matches[0] + " ")
			m.input.CursorEnd()
		default:
			m.input.SetValue(commonPrefix(matches))
			m.input.CursorEnd()
			m.setNotice(strings.Join(matches, "  "), false)
		}
		return m, nil
	}
	if m.showSidebar {
		m.sidebarFocus = true
		m.input.Blur()
		m.refreshSidebarCursor()
	}
	return m, nil
}

func commonPrefix(items []string) string {
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) mainWidth() int {
	w := m.width
	if m.showSidebar {
		w -= styles.SidebarWidth
	}
	return max(w, 10)
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	w := m.mainWidth()
	m.viewport.Width = w
	m.viewport.Height = max(m.height-headerHeight-statusHeight-inputHeight, 1)
	m.input.SetWidth(max(w-4, 1))
}

// refresh re-renders the conversation, following the bottom unless the
// user scrolled up.
func (m *Model) refresh() {
	if m.screen != screenChat || m.viewport.Width == 0 {
		return
	}
	follow := m.viewport.AtBottom() || m.viewport.TotalLineCount() <= m.viewport.Height
	m.viewport.SetContent(m.renderMessages())
	if follow {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.screen == screenLogin {
		return m.viewLogin()
	}
	if m.width == 0 {
		return ""
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		m.viewport.View(),
		m.viewStatus(),
		m.viewInput(),
	)
	if !m.showSidebar {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), main)
}

func (m Model) viewHeader() string {
	t := m.theme
	s := m.snap.Settings

	left := t.HeaderTitle.Render("Gemini") + " " + t.HeaderMeta.Render(s.Model)
	if s.EnableThinking {
		left += "  " + t.Badge.Render("thinking")
	}
	if s.Incognito {
		left += "  " + t.Incognito.Render("incognito")
	}
	if title := m.sessionTitle(); title != "" {
		left += "  " + t.HeaderMeta.Render(title)
	}

	right := ""
	if m.user != nil {
		right = t.HeaderMeta.Render(m.user.Email)
	}

	w := m.mainWidth() - 2
	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return t.Header.Width(m.mainWidth()).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) sessionTitle() string {
	for _, s := range m.sessions {
		if s.ID == m.snap.SessionID {
			return s.Title
		}
	}
	return ""
}

func (m Model) viewStatus() string {
	t := m.theme
	switch {
	case m.notice != "" && m.noticeErr:
		return t.StatusBar.Render(t.NoticeError.Render(firstLine(m.notice)))
	case m.notice != "":
		return t.StatusBar.Render(t.Notice.Render(firstLine(m.notice)))
	case m.snap.State == chat.Streaming:
		return t.StatusBar.Render(t.RenderShortcut("esc", "stop"))
	}
	return t.StatusBar.Render(strings.Join([]string{
		t.RenderShortcut("enter", "send"),
		t.RenderShortcut("C-n", "new"),
		t.RenderShortcut("C-b", "chats"),
		t.RenderShortcut("C-t", "thinking"),
		t.RenderShortcut("/help", "commands"),
	}, "  "))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func (m Model) viewInput() string {
	box := m.theme.InputBox
	if !m.sidebarFocus {
		box = m.theme.InputBoxFocused
	}
	return box.Width(m.mainWidth() - 2).Render(m.input.View())
}

// renderMessages renders the whole conversation, or the greeting when it
// is empty.
func (m *Model) renderMessages() string {
	t := m.theme
	if len(m.snap.Messages) == 0 {
		name := "there"
		if m.user != nil {
			name = m.user.DisplayName()
		}
		var b strings.Builder
		b.WriteString("\n" + t.HeaderTitle.Render("Hello, "+name) + "\n")
		b.WriteString(t.Muted.Render("How can I help you today?") + "\n\n")
		for i, s := range chat.Suggestions() {
			fmt.Fprintf(&b, "%s %s\n   %s\n", t.Muted.Render(fmt.Sprintf("%d.", i+1)), s.Text, t.Muted.Render(s.Sub))
		}
		b.WriteString("\n" + t.Muted.Render("Type /suggest <n> to use one."))
		return b.String()
	}

	r := m.renderer.get(m.mainWidth(), m.snap.Settings)
	last := len(m.snap.Messages) - 1

	var b strings.Builder
	for i, msg := range m.snap.Messages {
		label := t.ModelLabel
		switch {
		case msg.IsError:
			label = t.ErrorLabel
		case msg.Role == model.RoleUser:
			label = t.UserLabel
		}
		b.WriteString(label.Render(msg.Role.DisplayName()))
		b.WriteString(" ")
		b.WriteString(t.Timestamp.Render(msg.Timestamp.Format("15:04")))
		b.WriteString("\n")

		switch {
		case i == last && m.snap.AwaitingFirstByte():
			b.WriteString(m.spinner.View() + t.Thinking.Render(" Thinking..."))
		case msg.IsError:
			b.WriteString(t.ErrorText.Render(msg.Text))
		case r != nil:
			b.WriteString(r.Message(msg))
		default:
			b.WriteString(msg.Text)
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
