// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands shared by the TUI and REPL.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/gemclone/internal/chat"
	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/storage"
)

// CurrentSession is the session reference that means "the active session".
const CurrentSession = "."

// =============================================================================
// GENERAL
// =============================================================================

func handleQuit(context.Context, *Env, []string) (Result, error) {
	return Result{Quit: true}, nil
}

func handleLogout(ctx context.Context, env *Env, _ []string) (Result, error) {
	env.Chat.Logout(ctx)
	if env.Auth != nil {
		env.Auth.Logout()
	}
	return Result{Output: "Signed out.", LoggedOut: true}, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

func handleNew(ctx context.Context, env *Env, _ []string) (Result, error) {
	env.Chat.NewSession(ctx)
	if env.Chat.Settings().Incognito {
		return Result{Output: "Started a new incognito chat. It will not be saved."}, nil
	}
	return Result{Output: "Started a new chat."}, nil
}

func handleSessions(ctx context.Context, env *Env, _ []string) (Result, error) {
	sessions, err := env.Chat.Sessions(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: FormatSessions(sessions, env.Chat.Snapshot().SessionID), ShowSessions: true}, nil
}

// FormatSessions numbers sessions for /select and /delete and marks the
// active one.
func FormatSessions(sessions []model.ChatSession, activeID string) string {
	if len(sessions) == 0 {
		return "No saved chats."
	}
	var b strings.Builder
	for i, s := range sessions {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %2d. %s  (%d messages, %s)\n", marker, i+1, s.Title, len(s.Messages), s.UpdatedAt.Local().Format("Jan 2 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ResolveSession turns a 1-based list number, a full id, a unique id prefix
// or CurrentSession into a session id.
func ResolveSession(ctx context.Context, c *chat.Orchestrator, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == CurrentSession {
		if id := c.Snapshot().SessionID; id != "" {
			return id, nil
		}
		return "", errors.New("no active chat")
	}

	sessions, err := c.Sessions(ctx)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(sessions) {
			return "", fmt.Errorf("no chat numbered %d (have %d)", n, len(sessions))
		}
		return sessions[n-1].ID, nil
	}

	var matches []string
	for _, s := range sessions {
		if s.ID == ref {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%q: %w", ref, storage.ErrSessionNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d chats; use more of the id", ref, len(matches))
	}
}

func handleSelect(ctx context.Context, env *Env, args []string) (Result, error) {
	id, err := ResolveSession(ctx, env.Chat, args[0])
	if err != nil {
		return Result{}, err
	}
	if err := env.Chat.SelectSession(ctx, id); err != nil {
		return Result{}, err
	}
	title := id
	if cur, ok := env.Chat.Current(ctx); ok {
		title = cur.Title
	}
	return Result{Output: fmt.Sprintf("Opened %q.", title)}, nil
}

func handleDelete(ctx context.Context, env *Env, args []string) (Result, error) {
	id, err := ResolveSession(ctx, env.Chat, args[0])
	if err != nil {
		return Result{}, err
	}
	if err := env.Chat.DeleteSession(ctx, id); err != nil {
		return Result{}, err
	}
	return Result{Output: "Deleted chat " + id + "."}, nil
}

func handleSearch(ctx context.Context, env *Env, args []string) (Result, error) {
	query := strings.Join(args, " ")
	found, err := env.Chat.SearchSessions(ctx, query)
	if err != nil {
		return Result{}, err
	}
	if len(found) == 0 {
		return Result{Output: fmt.Sprintf("No chats match %q.", query)}, nil
	}
	return Result{Output: FormatSessions(found, env.Chat.Snapshot().SessionID)}, nil
}

func handleExport(ctx context.Context, env *Env, args []string) (Result, error) {
	format, err := exportFormat(args)
	if err != nil {
		return Result{}, err
	}
	sess, ok := env.Chat.Current(ctx)
	if !ok {
		return Result{}, errors.New("no active chat to export")
	}
	var b strings.Builder
	if err := storage.Export(&b, sess, format); err != nil {
		return Result{}, err
	}
	return Result{Output: strings.TrimRight(b.String(), "\n")}, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func handleSettings(_ context.Context, env *Env, _ []string) (Result, error) {
	return Result{Output: strings.TrimRight(env.Chat.Settings().Format(), "\n")}, nil
}

func handleSet(ctx context.Context, env *Env, args []string) (Result, error) {
	key, value := args[0], strings.Join(args[1:], " ")
	s := env.Chat.Settings()
	if err := s.Set(key, value); err != nil {
		return Result{}, err
	}
	if err := env.Chat.SaveSettings(ctx, s); err != nil {
		return Result{}, err
	}
	shown, _ := s.Get(key)
	return Result{Output: fmt.Sprintf("%s = %s", strings.ToLower(key), shown)}, nil
}

func handleThink(ctx context.Context, env *Env, _ []string) (Result, error) {
	if err := env.Chat.ToggleThinking(ctx); err != nil {
		return Result{}, err
	}
	if env.Chat.Settings().EnableThinking {
		return Result{Output: "Thinking mode on."}, nil
	}
	return Result{Output: "Thinking mode off."}, nil
}

// =============================================================================
// INPUT
// =============================================================================

func handleStop(_ context.Context, env *Env, _ []string) (Result, error) {
	if env.Chat.Stop() {
		return Result{Output: "Stopped."}, nil
	}
	return Result{Output: "Nothing to stop."}, nil
}

func handleAttach(_ context.Context, env *Env, args []string) (Result, error) {
	env.Chat.AttachFile(strings.Join(args, " "))
	return Result{}, nil
}

func promptAction(action chat.PromptAction) func(context.Context, *Env, []string) (Result, error) {
	return func(_ context.Context, env *Env, _ []string) (Result, error) {
		if err := env.Chat.ApplyPromptAction(action); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	}
}

func handleSuggest(_ context.Context, env *Env, args []string) (Result, error) {
	if len(args) == 0 {
		return Result{Output: FormatSuggestions()}, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", chat.ErrUnknownSuggestion, args[0])
	}
	if err := env.Chat.ApplySuggestion(n); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// FormatSuggestions numbers the starter prompts for /suggest.
func FormatSuggestions() string {
	var b strings.Builder
	for i, s := range chat.Suggestions() {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, s.Text, s.Sub)
	}
	return b.String()
}

func suggestionNumbers() []string {
	out := make([]string, len(chat.Suggestions()))
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}
