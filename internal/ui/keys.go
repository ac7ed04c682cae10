// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end of gemclone.
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of both screens.
type KeyMap struct {
	Quit           key.Binding
	Submit         key.Binding
	Newline        key.Binding
	Stop           key.Binding
	NewChat        key.Binding
	ToggleSidebar  key.Binding
	ToggleThinking key.Binding
	Tab            key.Binding
	ShiftTab       key.Binding
	PageUp         key.Binding
	PageDown       key.Binding

	// Sidebar
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:           key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),
		Submit:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:        key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("M-enter", "newline")),
		Stop:           key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
		NewChat:        key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("C-n", "new chat")),
		ToggleSidebar:  key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("C-b", "chats")),
		ToggleThinking: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("C-t", "thinking")),
		Tab:            key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete/focus")),
		ShiftTab:       key.NewBinding(key.WithKeys("shift+tab")),
		PageUp:         key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "scroll up")),
		PageDown:       key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "scroll down")),
		Up:             key.NewBinding(key.WithKeys("up", "k")),
		Down:           key.NewBinding(key.WithKeys("down", "j")),
		Delete:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete chat")),
	}
}
