// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini implements transport.Provider with the Google GenAI SDK.
//
// The SDK client is created on the first NewChat call, so a missing API key
// shows up as a failed send rather than a startup error.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/transport"
)

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("gemini API key is required (set GEMINI_API_KEY)")

// Config configures the provider.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint (empty = SDK default).
	BaseURL string
	// HTTPClient overrides the SDK's HTTP client.
	HTTPClient *http.Client
}

// Provider creates Gemini chats. It is safe for concurrent use.
type Provider struct {
	cfg Config

	mu     sync.Mutex
	client *genai.Client
}

// New creates a provider. No network or credential check happens here.
func New(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

// Name implements transport.Provider.
func (p *Provider) Name() string { return "gemini" }

func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:     p.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.cfg.HTTPClient,
	}
	if p.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	p.client = client
	return client, nil
}

// NewChat implements transport.Provider.
func (p *Provider) NewChat(ctx context.Context, params transport.Params) (transport.Chat, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	chat, err := client.Chats.Create(ctx, params.Model, generateConfig(params), history(params.History))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini chat: %w", err)
	}
	return &geminiChat{chat: chat}, nil
}

// generateConfig maps params to the SDK's generation config. The thinking
// config is set only when a budget is present.
func generateConfig(params transport.Params) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(params.Temperature)),
		MaxOutputTokens: int32(params.MaxOutputTokens),
	}
	if params.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(params.SystemInstruction, genai.RoleUser)
	}
	if params.ThinkingBudget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(int32(*params.ThinkingBudget)),
		}
	}
	return cfg
}

func history(turns []transport.Turn) []*genai.Content {
	if len(turns) == 0 {
		return nil
	}
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.Role == model.RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(t.Text, genai.Role(role)))
	}
	return out
}

type geminiChat struct {
	chat *genai.Chat
}

// SendStream implements transport.Chat. Each response chunk is mapped to its
// text; chunks carrying only thoughts or metadata come through as "".
func (c *geminiChat) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range c.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}
