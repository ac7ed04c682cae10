// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Gemini"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
//
// A message is immutable once finalized. The one exception is the in-flight
// model reply, whose Text is replaced with a growing prefix while streaming.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Text      string    `json:"text" yaml:"text"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	IsError   bool      `json:"isError,omitempty" yaml:"isError,omitempty"`
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(id, text string, at time.Time) Message {
	return Message{ID: id, Role: RoleUser, Text: text, Timestamp: at}
}

// NewModelPlaceholder creates the empty model message that a streamed reply
// is written into.
func NewModelPlaceholder(id string, at time.Time) Message {
	return Message{ID: id, Role: RoleModel, Timestamp: at}
}

// IsEmpty returns true if the message has no text.
func (m Message) IsEmpty() bool {
	return len(m.Text) == 0
}

// CloneMessages returns a copy of msgs that shares no backing array.
// A nil input yields an empty, non-nil slice.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
