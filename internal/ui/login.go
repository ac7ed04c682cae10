// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end of gemclone.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemclone/internal/auth"
)

var providerLabels = map[string]string{
	auth.ProviderGoogle:    "Continue with Google",
	auth.ProviderApple:     "Continue with Apple",
	auth.ProviderMicrosoft: "Continue with Microsoft",
	auth.ProviderPhone:     "Continue with phone",
}

// The sign-in screen focuses one of the provider buttons or, at index
// len(auth.Providers), the email field.
func (m Model) emailFocused() bool {
	return m.loginBtn == len(auth.Providers)
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loggingIn {
		return m, nil
	}
	n := len(auth.Providers) + 1

	switch {
	case key.Matches(msg, m.keys.Tab):
		m.loginBtn = (m.loginBtn + 1) % n
		m.syncLoginFocus()
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.loginBtn = (m.loginBtn + n - 1) % n
		m.syncLoginFocus()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.login()
	}

	if !m.emailFocused() {
		return m, nil
	}
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	m.loginErr = ""
	return m, cmd
}

func (m *Model) syncLoginFocus() {
	if m.emailFocused() {
		m.email.Focus()
	} else {
		m.email.Blur()
	}
}

func (m Model) login() (tea.Model, tea.Cmd) {
	mgr, ctx := m.auth, m.ctx

	if m.emailFocused() {
		addr := strings.TrimSpace(m.email.Value())
		if _, err := auth.NormalizeEmail(addr); err != nil {
			m.loginErr = "Enter a valid email address"
			return m, nil
		}
		m.loggingIn, m.loginErr = true, ""
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			u, err := mgr.LoginEmail(ctx, addr)
			return loginMsg{user: u, err: err}
		})
	}

	provider := auth.Providers[m.loginBtn]
	m.loggingIn, m.loginErr = true, ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		u, err := mgr.LoginSocial(ctx, provider)
		return loginMsg{user: u, err: err}
	})
}

// enterChat switches to the chat screen for u.
func (m *Model) enterChat(u auth.User) tea.Cmd {
	m.user = &u
	m.screen = screenChat
	m.email.Blur()
	m.email.Reset()
	m.input.Focus()
	m.layout()
	m.refresh()
	return tea.Batch(m.loadSessions(), m.input.Focus())
}

// leaveChat returns to the sign-in screen after a logout.
func (m *Model) leaveChat() {
	m.user = nil
	m.screen = screenLogin
	m.input.Blur()
	m.input.Reset()
	m.showSidebar, m.sidebarFocus = false, false
	m.sessions = nil
	m.loginBtn = len(auth.Providers)
	m.syncLoginFocus()
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) viewLogin() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.LoginTitle.Render("Sign in"))
	b.WriteString("\n")
	b.WriteString(t.LoginSubtitle.Render("to continue to Gemini"))
	b.WriteString("\n\n")

	for i, p := range auth.Providers {
		style := t.Button
		if m.loginBtn == i {
			style = t.ButtonFocused
		}
		b.WriteString(style.Render(providerLabels[p]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.Divider.Render("or"))
	b.WriteString("\n\n")

	box := t.InputBox
	if m.emailFocused() {
		box = t.InputBoxFocused
	}
	b.WriteString(box.Width(44).Render(m.email.View()))
	b.WriteString("\n")

	switch {
	case m.loggingIn:
		b.WriteString(m.spinner.View() + t.Muted.Render(" Signing in..."))
	case m.loginErr != "":
		b.WriteString(t.NoticeError.Render(m.loginErr))
	default:
		b.WriteString(t.Muted.Render("tab to move, enter to continue"))
	}

	content := t.LoginBox.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
