// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// # Key Types
//
//   - Message: a single turn with role, text, timestamp and error flag
//   - ChatSession: an ordered list of messages with a title and timestamps
//   - Role: message role enumeration (user, model)
//
// # Usage
//
// Build a session and let it derive its title:
//
//	s := model.NewChatSession(uuid.NewString(), time.Now())
//	s.ApplyMessages([]model.Message{model.NewUserMessage(id, "Hi", now)}, now)
//	fmt.Println(s.Title) // "Hi"
package model
