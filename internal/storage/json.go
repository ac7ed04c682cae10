// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat session persistence for gemclone.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/util"
)

// =============================================================================
// JSON STORE
// =============================================================================

// JSONStore keeps one JSON file per session in a directory.
type JSONStore struct {
	// BaseDir is the directory for storing sessions
	// Default: ~/.gemclone/sessions/
	BaseDir string

	// MaxSessions limits stored sessions (0 = unlimited). The oldest-created
	// sessions are pruned first.
	MaxSessions int

	mu sync.Mutex
}

// NewJSONStore creates a store in baseDir, creating it with 0700.
func NewJSONStore(baseDir string) (*JSONStore, error) {
	if baseDir == "" {
		return nil, errors.New("json store needs a directory")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &JSONStore{BaseDir: baseDir}, nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List implements Store. Unreadable files are skipped.
func (s *JSONStore) List(ctx context.Context) ([]model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

func (s *JSONStore) list(ctx context.Context) ([]model.ChatSession, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.ChatSession{}, nil
		}
		return nil, err
	}

	sessions := make([]model.ChatSession, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		sess, err := s.load(id)
		if err != nil {
			continue // Skip corrupted files
		}
		sessions = append(sessions, sess)
	}

	sortNewestFirst(sessions)
	return sessions, nil
}

// Get implements Store.
func (s *JSONStore) Get(_ context.Context, id string) (model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *JSONStore) load(id string) (model.ChatSession, error) {
	path, err := s.filePath(id)
	if err != nil {
		return model.ChatSession{}, notFound(id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ChatSession{}, notFound(id)
		}
		return model.ChatSession{}, err
	}

	var sess model.ChatSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return model.ChatSession{}, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	if sess.Messages == nil {
		sess.Messages = []model.Message{}
	}
	return sess, nil
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Create implements Store.
func (s *JSONStore) Create(ctx context.Context, sess model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.filePath(sess.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return exists(sess.ID)
	}
	if err := s.save(sess); err != nil {
		return err
	}

	if s.MaxSessions > 0 {
		s.enforceLimit(ctx)
	}
	return nil
}

// Update implements Store.
func (s *JSONStore) Update(_ context.Context, id string, msgs []model.Message, now time.Time) (model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return model.ChatSession{}, err
	}
	sess.ApplyMessages(msgs, now)
	if err := s.save(sess); err != nil {
		return model.ChatSession{}, err
	}
	return sess, nil
}

// save writes the session atomically, owner-only.
func (s *JSONStore) save(sess model.ChatSession) error {
	path, err := s.filePath(sess.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// enforceLimit removes the oldest sessions if over limit.
func (s *JSONStore) enforceLimit(ctx context.Context) {
	sessions, err := s.list(ctx)
	if err != nil || len(sessions) <= s.MaxSessions {
		return
	}
	for _, old := range sessions[s.MaxSessions:] {
		if path, err := s.filePath(old.ID); err == nil {
			_ = os.Remove(path)
		}
	}
}

// Delete implements Store.
func (s *JSONStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.filePath(id)
	if err != nil {
		return notFound(id)
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return err
	}
	return nil
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a session ID. Ids that could escape
// BaseDir are rejected.
func (s *JSONStore) filePath(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || filepath.Base(id) != id {
		return "", ErrInvalidID
	}
	return filepath.Join(s.BaseDir, id+".json"), nil
}
