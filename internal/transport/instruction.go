// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single current chat context with the remote
// model provider.
package transport

import (
	"strings"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/settings"
)

// BaseInstruction opens every system instruction.
const BaseInstruction = "You are a helpful, clever, and concise AI assistant named Gemini Clone. Format your responses with Markdown."

var tones = map[settings.Personality]string{
	settings.PersonalityProfessional: "Maintain a strictly professional, objective, and formal tone.",
	settings.PersonalityFriendly:     "Be warm, approachable, and friendly. Use emojis occasionally if appropriate.",
	settings.PersonalityCreative:     "Be imaginative and creative. Use colorful language and metaphors.",
	settings.PersonalityHumorous:     "Be witty and humorous. Feel free to crack jokes where appropriate.",
	settings.PersonalityStrict:       "Be concise, direct, and strict. Avoid filler words and pleasantries.",
}

// Tone returns the tone sentence for p, or "" for an unknown personality.
func Tone(p settings.Personality) string {
	return tones[p]
}

// SystemInstruction joins the base instruction, the personality tone and the
// custom instruction with blank lines. Empty segments are dropped.
func SystemInstruction(s settings.AppSettings) string {
	segments := []string{BaseInstruction, Tone(s.Personality), strings.TrimSpace(s.CustomSystemInstruction)}

	parts := segments[:0]
	for _, seg := range segments {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "\n\n")
}

// BuildParams maps settings and prior messages to chat creation parameters.
// Messages with no text (an unfilled reply placeholder) are skipped; all
// others keep their role and full text in order.
func BuildParams(s settings.AppSettings, history []model.Message) Params {
	p := Params{
		Model:             s.Model,
		SystemInstruction: SystemInstruction(s),
		Temperature:       s.Temperature,
		MaxOutputTokens:   s.MaxOutputTokens,
	}
	if s.EnableThinking {
		budget := s.ThinkingBudget
		p.ThinkingBudget = &budget
	}

	if len(history) > 0 {
		p.History = make([]Turn, 0, len(history))
		for _, m := range history {
			if m.IsEmpty() {
				continue
			}
			p.History = append(p.History, Turn{Role: m.Role, Text: m.Text})
		}
	}
	return p
}
