// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/jeranaias/gemclone/internal/util"
)

const (
	// DefaultTitle is the title of a session before its first message.
	DefaultTitle = "New Chat"

	// TitleMaxRunes is how much of the first user message becomes the title.
	TitleMaxRunes = 30
)

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one conversation. When serialized it is a mapping with
// the fields id, title, messages, createdAt and updatedAt.
type ChatSession struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Messages  []Message `json:"messages" yaml:"messages"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// NewChatSession creates an empty session with the default title.
func NewChatSession(id string, now time.Time) ChatSession {
	return ChatSession{
		ID:        id,
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyMessages replaces the message list and refreshes UpdatedAt.
//
// The title is derived only on the transition from no messages to some
// messages, and only when the first message came from the user. Later
// updates never rename the session.
func (s *ChatSession) ApplyMessages(msgs []Message, now time.Time) {
	if len(s.Messages) == 0 && len(msgs) > 0 && msgs[0].Role == RoleUser {
		s.Title = DeriveTitle(msgs[0].Text)
	}
	s.Messages = CloneMessages(msgs)
	s.UpdatedAt = now
}

// Clone returns a deep copy of the session.
func (s ChatSession) Clone() ChatSession {
	s.Messages = CloneMessages(s.Messages)
	return s
}

// Preview returns the first user message on a single line, truncated.
func (s ChatSession) Preview(maxRunes int) string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser && msg.Text != "" {
			return util.TruncateRunes(util.SingleLine(msg.Text), maxRunes)
		}
	}
	return ""
}

// DeriveTitle turns the first user message into a session title: the first
// 30 runes, with "..." appended when the text is longer.
func DeriveTitle(text string) string {
	return util.PrefixRunes(text, TitleMaxRunes)
}
