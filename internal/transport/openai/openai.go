// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai implements transport.Provider for OpenAI-compatible chat
// completion endpoints, including self-hosted servers and proxies.
//
// The completions API is stateless, so each chat keeps its own turn list and
// resends it with every message.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strings"
	"sync"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/transport"
)

// ErrMissingAPIKey is returned when the official endpoint is used without a key.
var ErrMissingAPIKey = errors.New("openai API key is required (set OPENAI_API_KEY)")

// Config configures the provider.
type Config struct {
	APIKey string
	// BaseURL points at an OpenAI-compatible server, including the /v1 suffix.
	// Servers other than the official one may not need a key.
	BaseURL string
}

// Provider creates chats over go-openai.
type Provider struct {
	client *goopenai.Client
	cfg    Config
}

// New creates a provider.
func New(cfg Config) *Provider {
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}
}

// Name implements transport.Provider.
func (p *Provider) Name() string { return "openai" }

// NewChat implements transport.Provider. The thinking budget has no
// equivalent here and is ignored.
func (p *Provider) NewChat(_ context.Context, params transport.Params) (transport.Chat, error) {
	if p.cfg.APIKey == "" && p.cfg.BaseURL == "" {
		return nil, ErrMissingAPIKey
	}

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(params.History)+1)
	if params.SystemInstruction != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: params.SystemInstruction,
		})
	}
	for _, t := range params.History {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: roleFor(t.Role), Content: t.Text})
	}

	return &chat{
		client:      p.client,
		model:       params.Model,
		temperature: wireTemperature(params.Temperature),
		maxTokens:   params.MaxOutputTokens,
		messages:    msgs,
	}, nil
}

// wireTemperature maps t for the request. go-openai omits a zero temperature
// from the JSON body and the server then applies its own default, so zero is
// sent as the smallest positive float32.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func roleFor(r model.Role) string {
	if r == model.RoleModel {
		return goopenai.ChatMessageRoleAssistant
	}
	return goopenai.ChatMessageRoleUser
}

type chat struct {
	client      *goopenai.Client
	model       string
	temperature float32
	maxTokens   int

	mu       sync.Mutex
	messages []goopenai.ChatCompletionMessage
}

func (c *chat) request(text string) goopenai.ChatCompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(c.messages)+1)
	msgs = append(msgs, c.messages...)
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: text})

	return goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      true,
	}
}

// commit records a completed exchange so the next request carries it.
func (c *chat) commit(text, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages,
		goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: text},
		goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: reply},
	)
}

// SendStream implements transport.Chat.
func (c *chat) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := c.client.CreateChatCompletionStream(ctx, c.request(text))
		if err != nil {
			yield("", fmt.Errorf("failed to create stream: %w", err))
			return
		}
		defer stream.Close()

		var reply strings.Builder
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				c.commit(text, reply.String())
				return
			}
			if err != nil {
				yield("", fmt.Errorf("stream error: %w", err))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			content := resp.Choices[0].Delta.Content
			reply.WriteString(content)
			if !yield(content, nil) {
				return
			}
		}
	}
}
