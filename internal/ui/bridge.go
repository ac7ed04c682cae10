// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end of gemclone.
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gemclone/internal/chat"
)

// snapshotMsg carries the latest orchestrator state into Update. The flags
// record which kinds of change were folded into it.
type snapshotMsg struct {
	snap     chat.Snapshot
	sessions bool
	input    bool
	settings bool
}

// bridge coalesces orchestrator events. handle never blocks, so it is safe
// to call from the goroutine driving a reply. Events can arrive out of order
// from different goroutines; the snapshot with the highest Seq wins while the
// change flags of every event are kept.
type bridge struct {
	mu       sync.Mutex
	latest   snapshotMsg
	notify   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newBridge() *bridge {
	return &bridge{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (b *bridge) handle(ev chat.Event) {
	b.mu.Lock()
	if ev.Snapshot.Seq >= b.latest.snap.Seq {
		b.latest.snap = ev.Snapshot
	}
	switch ev.Kind {
	case chat.SessionsChanged:
		b.latest.sessions = true
	case chat.InputChanged:
		b.latest.input = true
	case chat.SettingsChanged:
		b.latest.settings = true
	}
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// wait returns a command that delivers the next snapshotMsg. Update must
// issue a new wait after each one.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.notify:
		case <-b.done:
			return nil
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		msg := b.latest
		b.latest = snapshotMsg{snap: msg.snap}
		return msg
	}
}

func (b *bridge) close() {
	b.stopOnce.Do(func() { close(b.done) })
}
