// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates a conversation.
package chat

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// PromptAction is a menu shortcut that seeds the input buffer.
type PromptAction string

const (
	ActionImage        PromptAction = "image"
	ActionDeepResearch PromptAction = "deep_research"
	ActionShopping     PromptAction = "shopping"
	ActionStudy        PromptAction = "study"
	ActionWebSearch    PromptAction = "web_search"
	ActionCanvas       PromptAction = "canvas"
	ActionSpotify      PromptAction = "spotify"
)

var (
	// ErrUnknownAction is returned for an action with no prefix.
	ErrUnknownAction = errors.New("unknown prompt action")
	// ErrComingSoon is returned for actions listed in the menu but not built.
	ErrComingSoon = errors.New("coming soon")
	// ErrUnknownSuggestion is returned for a suggestion number out of range.
	ErrUnknownSuggestion = errors.New("unknown suggestion")
)

var actionPrefixes = map[PromptAction]string{
	ActionImage:        "Generate an image of ",
	ActionDeepResearch: "Conduct deep research on: ",
	ActionShopping:     "Find the best price for: ",
	ActionStudy:        "Create a study plan for: ",
	ActionWebSearch:    "Search the web for: ",
}

// PromptActions lists the actions ApplyPromptAction accepts, sorted.
func PromptActions() []PromptAction {
	out := make([]PromptAction, 0, len(actionPrefixes))
	for a := range actionPrefixes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ApplyPromptAction appends the action's prefix to the input buffer.
func (o *Orchestrator) ApplyPromptAction(action PromptAction) error {
	action = PromptAction(strings.ToLower(strings.TrimSpace(string(action))))
	switch action {
	case ActionCanvas, ActionSpotify:
		return fmt.Errorf("%s: %w", action, ErrComingSoon)
	}
	prefix, ok := actionPrefixes[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	o.appendInput(prefix)
	return nil
}

// AttachFile notes an attachment in the input buffer. Only the base name is
// used; the file is not read or sent.
func (o *Orchestrator) AttachFile(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	o.appendInput("[Attached: " + filepath.Base(name) + "] ")
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// Suggestion is a starter prompt offered while the chat is empty.
type Suggestion struct {
	Text string
	Sub  string
}

// Prompt is the text the suggestion puts in the input buffer.
func (s Suggestion) Prompt() string {
	return s.Text + " " + s.Sub
}

var suggestions = []Suggestion{
	{Text: "Plan a trip to Kyoto", Sub: "for 3 days in spring"},
	{Text: "Debug this Python script", Sub: "finding memory leaks"},
	{Text: "Brainstorm marketing ideas", Sub: "for a coffee shop"},
	{Text: "Write a thank you note", Sub: "for a job interview"},
}

// Suggestions returns the starter prompts in display order.
func Suggestions() []Suggestion {
	return slices.Clone(suggestions)
}

// ApplySuggestion replaces the input buffer with suggestion n, counted from 1.
func (o *Orchestrator) ApplySuggestion(n int) error {
	if n < 1 || n > len(suggestions) {
		return fmt.Errorf("%w: %d (choose 1-%d)", ErrUnknownSuggestion, n, len(suggestions))
	}
	o.SetInput(suggestions[n-1].Prompt())
	return nil
}
