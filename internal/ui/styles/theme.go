// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the colors and Lip Gloss styles of the gemclone TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// SidebarWidth is the width of the session sidebar including its border.
const SidebarWidth = 32

// Theme holds all the styles of the application.
type Theme struct {
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style
	Badge       lipgloss.Style
	Incognito   lipgloss.Style

	// Messages
	UserLabel  lipgloss.Style
	ModelLabel lipgloss.Style
	ErrorLabel lipgloss.Style
	ErrorText  lipgloss.Style
	Timestamp  lipgloss.Style
	Thinking   lipgloss.Style

	// Input
	InputBox        lipgloss.Style
	InputBoxFocused lipgloss.Style

	// Sidebar
	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style
	SessionItemActive   lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	Notice       lipgloss.Style
	NoticeError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Login
	LoginBox      lipgloss.Style
	LoginTitle    lipgloss.Style
	LoginSubtitle lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	Divider       lipgloss.Style
	Muted         lipgloss.Style
}

// NewTheme creates a theme for profile. termenv.Ascii yields unstyled colors.
func NewTheme(profile termenv.Profile) *Theme {
	t := &Theme{ColorProfile: profile}

	t.Header = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(Border)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Blue)
	t.HeaderMeta = lipgloss.NewStyle().Foreground(TextMuted)
	t.Badge = lipgloss.NewStyle().Foreground(Violet).Bold(true)
	t.Incognito = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Violet)
	t.ModelLabel = lipgloss.NewStyle().Bold(true).Foreground(Blue)
	t.ErrorLabel = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Thinking = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.InputBox = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1)
	t.InputBoxFocused = t.InputBox.Copy().BorderForeground(Blue)

	t.Sidebar = lipgloss.NewStyle().Width(SidebarWidth-1).Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(Border)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(TextMuted).MarginBottom(1)
	t.SessionItem = lipgloss.NewStyle().Foreground(Text)
	t.SessionItemSelected = lipgloss.NewStyle().Foreground(Text).Background(SurfaceSelected).Bold(true)
	t.SessionItemActive = lipgloss.NewStyle().Foreground(Blue)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)
	t.Notice = lipgloss.NewStyle().Foreground(Green)
	t.NoticeError = lipgloss.NewStyle().Foreground(Rose)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Text).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.LoginBox = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(1, 4).Width(56)
	t.LoginTitle = lipgloss.NewStyle().Bold(true).Foreground(Text).Align(lipgloss.Center)
	t.LoginSubtitle = lipgloss.NewStyle().Foreground(TextMuted).Align(lipgloss.Center)
	t.Button = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 2).Width(46).Align(lipgloss.Center)
	t.ButtonFocused = t.Button.Copy().BorderForeground(Blue).Foreground(Blue).Bold(true)
	t.Divider = lipgloss.NewStyle().Foreground(TextMuted).Width(48).Align(lipgloss.Center)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	return t
}

// RenderShortcut renders "key desc" in the status bar style.
func (t *Theme) RenderShortcut(key, desc string) string {
	return t.ShortcutKey.Render(key) + " " + t.ShortcutDesc.Render(desc)
}
