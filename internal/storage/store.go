// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat session persistence for gemclone.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/gemclone/internal/config"
	"github.com/jeranaias/gemclone/internal/model"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store keeps chat sessions. Implementations are safe for concurrent use and
// return copies, never shared slices.
type Store interface {
	// List returns every session, newest-created first. Updates do not
	// change the order.
	List(ctx context.Context) ([]model.ChatSession, error)

	// Get returns one session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (model.ChatSession, error)

	// Create adds a session. The id must be new.
	Create(ctx context.Context, s model.ChatSession) error

	// Update replaces the message list of id, deriving the title when the
	// session had no messages before, and sets UpdatedAt to now.
	Update(ctx context.Context, id string, msgs []model.Message, now time.Time) (model.ChatSession, error)

	// Delete removes a session or returns ErrSessionNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Open creates the store selected by cfg. Paths must already be resolved.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageJSON:
		return NewJSONStore(cfg.Path)
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session doesn't exist.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &SessionError{Message: "session not found"}

// ErrSessionExists is returned by Create for a duplicate id.
var ErrSessionExists = &SessionError{Message: "session already exists"}

// ErrInvalidID is returned for ids that cannot name a stored session.
var ErrInvalidID = &SessionError{Message: "invalid session id"}

// SessionError represents a session-related error.
// It implements the error interface and can be compared using errors.Is.
type SessionError struct {
	Message string
	ID      string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.ID != "" {
		return e.Message + ": " + e.ID
	}
	return e.Message
}

// Is implements errors.Is support for comparing session errors by message.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

func notFound(id string) error {
	return &SessionError{Message: ErrSessionNotFound.Message, ID: id}
}

func exists(id string) error {
	return &SessionError{Message: ErrSessionExists.Message, ID: id}
}

// =============================================================================
// HELPERS
// =============================================================================

// sortNewestFirst orders sessions by creation time, newest first.
func sortNewestFirst(sessions []model.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}

// Search returns the sessions whose title or message text contains query,
// ignoring case, in store order.
func Search(ctx context.Context, st Store, query string) ([]model.ChatSession, error) {
	all, err := st.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	var results []model.ChatSession
	for _, s := range all {
		if matches(s, query) {
			results = append(results, s)
		}
	}
	return results, nil
}

func matches(s model.ChatSession, query string) bool {
	if strings.Contains(strings.ToLower(s.Title), query) {
		return true
	}
	for _, msg := range s.Messages {
		if strings.Contains(strings.ToLower(msg.Text), query) {
			return true
		}
	}
	return false
}
