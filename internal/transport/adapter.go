// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single current chat context with the remote
// model provider.
package transport

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/settings"
)

// =============================================================================
// STREAM ERROR
// =============================================================================

// StreamError is a remote failure after part of the reply had arrived.
type StreamError struct {
	Partial string // Content received before error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter holds exactly one current chat, rebuilt on every Initialize.
// It is safe for concurrent use.
type Adapter struct {
	provider Provider
	log      *zap.Logger

	mu       sync.Mutex
	chat     Chat
	params   Params
	settings settings.AppSettings
	known    bool // settings recorded at least once
}

// NewAdapter creates an adapter over provider. A nil logger disables logging.
func NewAdapter(provider Provider, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{provider: provider, log: log}
}

// Initialize discards the current chat and builds a new one from s and
// history. The settings and history are recorded even when the provider
// fails, so the next SendStream retries with them.
func (a *Adapter) Initialize(ctx context.Context, s settings.AppSettings, history []model.Message) error {
	params := BuildParams(s, history)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.chat = nil
	a.params = params
	a.settings = s
	a.known = true

	chat, err := a.create(ctx)
	if err != nil {
		a.log.Error("failed to initialize chat",
			zap.String("model", params.Model),
			zap.Int("history", len(params.History)),
			zap.Error(err))
		return err
	}
	a.chat = chat
	a.log.Debug("chat initialized",
		zap.String("provider", a.provider.Name()),
		zap.String("model", params.Model),
		zap.Int("history", len(params.History)),
		zap.Bool("thinking", params.ThinkingBudget != nil))
	return nil
}

// create builds a chat from the recorded params. Caller holds a.mu.
func (a *Adapter) create(ctx context.Context) (Chat, error) {
	if a.provider == nil {
		return nil, ErrNoProvider
	}
	chat, err := a.provider.NewChat(ctx, a.params)
	if err != nil {
		return nil, fmt.Errorf("initialize chat: %w", err)
	}
	return chat, nil
}

// Settings returns the settings most recently passed to Initialize.
func (a *Adapter) Settings() (settings.AppSettings, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings, a.known
}

// Ready reports whether a chat is currently held.
func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chat != nil
}

// current returns the held chat, building one from the last-known settings
// when the previous Initialize failed.
func (a *Adapter) current(ctx context.Context) (Chat, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chat != nil {
		return a.chat, nil
	}
	if !a.known {
		return nil, ErrNotInitialized
	}
	chat, err := a.create(ctx)
	if err != nil {
		return nil, err
	}
	a.log.Debug("chat initialized lazily", zap.String("model", a.params.Model))
	a.chat = chat
	return chat, nil
}

// SendStream returns the reply to text as a lazy sequence of non-empty
// fragments. Nothing happens until the sequence is iterated, and it can be
// iterated only once; a second pass yields ErrStreamConsumed. Creation and
// remote errors are yielded once and end the sequence. Cancelling ctx aborts
// the remote call.
func (a *Adapter) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	var consumed atomic.Bool

	return func(yield func(string, error) bool) {
		if consumed.Swap(true) {
			yield("", ErrStreamConsumed)
			return
		}

		chat, err := a.current(ctx)
		if err != nil {
			yield("", err)
			return
		}

		var received strings.Builder
		for fragment, err := range chat.SendStream(ctx, text) {
			if err != nil {
				if ctx.Err() == nil {
					a.log.Error("reply stream failed", zap.Int("partial_chars", received.Len()), zap.Error(err))
				}
				yield("", &StreamError{Partial: received.String(), Err: err})
				return
			}
			if fragment == "" {
				continue
			}
			received.WriteString(fragment)
			if !yield(fragment, nil) {
				return
			}
		}
	}
}
