// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates a conversation.
package chat

import (
	"context"
	"time"
	"unicode"

	"golang.org/x/time/rate"
)

// SplitTokens splits s into alternating runs of whitespace and
// non-whitespace. Every byte of s lands in exactly one token, so joining the
// tokens gives back s. No token is empty.
func SplitTokens(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
			inSpace = space
		}
	}
	return append(tokens, s[start:])
}

// pacer spaces out token reveals. The first token goes through at once.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(interval time.Duration) *pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &pacer{limiter: rate.NewLimiter(limit, 1)}
}

// wait blocks until the next token may be shown or ctx is done.
func (p *pacer) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.limiter.Wait(ctx)
}
