// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single current chat context with the remote
// model provider.
package transport

import (
	"context"
	"errors"
	"iter"

	"github.com/jeranaias/gemclone/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoProvider is returned when an Adapter has no Provider configured.
	ErrNoProvider = errors.New("no chat provider configured")

	// ErrStreamConsumed is yielded when a reply stream is iterated twice.
	ErrStreamConsumed = errors.New("reply stream already consumed")

	// ErrNotInitialized is returned when a send happens before any settings
	// were recorded.
	ErrNotInitialized = errors.New("chat not initialized")
)

// =============================================================================
// PROVIDER SEAM
// =============================================================================

// Turn is one prior message in a provider-neutral form.
type Turn struct {
	Role model.Role
	Text string
}

// Params is everything a chat binds at creation time.
type Params struct {
	Model             string
	SystemInstruction string
	Temperature       float64
	MaxOutputTokens   int
	// ThinkingBudget is nil when thinking mode is off.
	ThinkingBudget *int
	History        []Turn
}

// Provider creates chats against a remote model API.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// NewChat builds a chat bound to p. Implementations must not retain p.History.
	NewChat(ctx context.Context, p Params) (Chat, error)
}

// Chat is a stateful conversation with the remote model.
type Chat interface {
	// SendStream sends text and yields the reply as it arrives. Fragments may
	// be empty; the Adapter filters them. The sequence is iterated once.
	SendStream(ctx context.Context, text string) iter.Seq2[string, error]
}
