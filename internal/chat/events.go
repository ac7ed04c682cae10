// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates a conversation.
package chat

import (
	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/settings"
)

// =============================================================================
// STATE
// =============================================================================

// State is the send state of the orchestrator.
type State int

const (
	// Idle accepts a new send.
	Idle State = iota
	// Streaming has a reply in flight. Before the first token arrives the
	// reply placeholder is empty.
	Streaming
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the displayed conversation.
type Snapshot struct {
	// Seq increases with every snapshot taken. A subscriber that sees a
	// lower Seq than one it already holds has received a stale event.
	Seq       uint64
	State     State
	SessionID string
	Messages  []model.Message
	Input     string
	Settings  settings.AppSettings
}

// AwaitingFirstByte reports whether a reply is in flight with nothing shown yet.
func (s Snapshot) AwaitingFirstByte() bool {
	if s.State != Streaming || len(s.Messages) == 0 {
		return false
	}
	last := s.Messages[len(s.Messages)-1]
	return last.Role == model.RoleModel && last.Text == ""
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind says what changed.
type EventKind int

const (
	StateChanged EventKind = iota
	MessagesChanged
	MessageUpdated
	SessionsChanged
	InputChanged
	SettingsChanged
)

var eventNames = [...]string{
	StateChanged:    "state",
	MessagesChanged: "messages",
	MessageUpdated:  "message",
	SessionsChanged: "sessions",
	InputChanged:    "input",
	SettingsChanged: "settings",
}

// String returns the event kind name.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is delivered to subscribers after a change. Message is set for
// MessageUpdated.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Message  model.Message
}
