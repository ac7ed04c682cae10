// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package ui is the Bubble Tea front end of gemclone.

It has two screens. The sign-in screen offers the mock social buttons and an
email field. The chat screen shows the session sidebar, the message
viewport and the input box.

The UI holds no conversation state of its own. Every change goes through
the chat.Orchestrator and comes back as a chat.Event, which a small bridge
turns into Bubble Tea messages. Blocking orchestrator calls (sending, or
switching sessions while a reply streams) run inside tea.Cmds.

# Key Types

  - Model: the root tea.Model
  - Options: what the UI is wired to
  - KeyMap: key bindings

# Usage

	err := ui.Run(ctx, ui.Options{Chat: orch, Auth: authMgr, Logger: log})

# Keys

	enter        send, or run a /command
	alt+enter    newline
	esc          stop the reply in progress
	ctrl+n       new chat
	ctrl+b       toggle the session sidebar
	tab          complete a /command, or move focus to the sidebar
	ctrl+t       toggle thinking mode
	pgup/pgdown  scroll
	ctrl+c       quit
*/
package ui
