// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end of gemclone.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/gemclone/internal/ui/styles"
)

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if len(m.sessions) == 0 {
			return m, nil
		}
		id := m.sessions[m.cursor].ID
		m.focusInput()
		return m, m.execute(fmt.Sprintf("/select %s", id))
	case key.Matches(msg, m.keys.Delete):
		if len(m.sessions) == 0 {
			return m, nil
		}
		return m, m.execute(fmt.Sprintf("/delete %s", m.sessions[m.cursor].ID))
	case msg.String() == "n", key.Matches(msg, m.keys.NewChat):
		m.focusInput()
		return m, m.execute("/new")
	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = false
		m.focusInput()
		m.layout()
		m.refresh()
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab), key.Matches(msg, m.keys.Stop):
		m.focusInput()
	}
	return m, nil
}

func (m *Model) focusInput() {
	m.sidebarFocus = false
	m.input.Focus()
}

// refreshSidebarCursor puts the cursor on the active session.
func (m *Model) refreshSidebarCursor() {
	for i, s := range m.sessions {
		if s.ID == m.snap.SessionID {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, len(m.sessions)-1)
	m.cursor = max(m.cursor, 0)
}

func (m Model) viewSidebar() string {
	t := m.theme
	inner := styles.SidebarWidth - 4

	var b strings.Builder
	b.WriteString(t.SidebarTitle.Render("Recent"))
	b.WriteString("\n")

	if len(m.sessions) == 0 {
		b.WriteString(t.Muted.Render("No chats yet"))
	}
	for i, s := range m.sessions {
		title := runewidth.Truncate(s.Title, inner, "…")
		style := t.SessionItem
		switch {
		case m.sidebarFocus && i == m.cursor:
			style = t.SessionItemSelected
		case s.ID == m.snap.SessionID:
			style = t.SessionItemActive
		}
		b.WriteString(style.Width(inner).Render(title))
		b.WriteString("\n")
	}

	if m.sidebarFocus {
		b.WriteString("\n")
		b.WriteString(t.RenderShortcut("enter", "open") + "  " + t.RenderShortcut("d", "delete") + "  " + t.RenderShortcut("n", "new"))
	}

	return t.Sidebar.Height(max(m.height, 1)).Render(b.String())
}
