// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transporttest provides a scripted transport.Provider for tests.
package transporttest

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/jeranaias/gemclone/internal/transport"
)

// Reply scripts one remote reply.
type Reply struct {
	// Fragments are yielded in order.
	Fragments []string
	// Err is yielded after the fragments, if set.
	Err error
	// Gate, if set, must be closed before the first fragment is yielded.
	Gate chan struct{}
	// Hold keeps the stream open after the fragments until ctx is cancelled.
	Hold bool
}

// Provider records every chat it creates and every message it is sent.
// Replies are consumed in order; once the queue is empty Default is used.
type Provider struct {
	mu         sync.Mutex
	queue      []Reply
	Default    Reply
	newChatErr error
	created    []transport.Params
	sent       []string
}

// New creates a provider that answers with replies, then with "ok".
func New(replies ...Reply) *Provider {
	return &Provider{
		queue:   replies,
		Default: Reply{Fragments: []string{"ok"}},
	}
}

// Queue appends replies to the script.
func (p *Provider) Queue(replies ...Reply) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, replies...)
}

// FailNewChat makes NewChat return err until called again with nil.
func (p *Provider) FailNewChat(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newChatErr = err
}

// Name implements transport.Provider.
func (p *Provider) Name() string { return "fake" }

// NewChat implements transport.Provider.
func (p *Provider) NewChat(_ context.Context, params transport.Params) (transport.Chat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.newChatErr != nil {
		return nil, p.newChatErr
	}
	params.History = slices.Clone(params.History)
	p.created = append(p.created, params)
	return &chat{p: p}, nil
}

// Created returns the params of every chat created so far.
func (p *Provider) Created() []transport.Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.created)
}

// Last returns the params of the most recent chat.
func (p *Provider) Last() (transport.Params, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.created) == 0 {
		return transport.Params{}, false
	}
	return p.created[len(p.created)-1], true
}

// Sent returns every message sent so far, in order.
func (p *Provider) Sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sent)
}

func (p *Provider) next(text string) Reply {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, text)
	if len(p.queue) == 0 {
		return p.Default
	}
	r := p.queue[0]
	p.queue = p.queue[1:]
	return r
}

type chat struct {
	p *Provider
}

func (c *chat) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		r := c.p.next(text)

		if r.Gate != nil {
			select {
			case <-r.Gate:
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}
		for _, f := range r.Fragments {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if r.Err != nil {
			yield("", r.Err)
			return
		}
		if r.Hold {
			<-ctx.Done()
			yield("", ctx.Err())
		}
	}
}
