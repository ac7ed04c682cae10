// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat session persistence for gemclone.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jeranaias/gemclone/internal/model"
)

// MemoryStore keeps sessions for the life of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []model.ChatSession // newest first
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) indexOf(id string) int {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context) ([]model.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.ChatSession, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.Clone()
	}
	return out, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (model.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return model.ChatSession{}, notFound(id)
	}
	return m.sessions[i].Clone(), nil
}

// Create implements Store. New sessions are prepended.
func (m *MemoryStore) Create(_ context.Context, s model.ChatSession) error {
	if s.ID == "" {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(s.ID) >= 0 {
		return exists(s.ID)
	}
	m.sessions = append([]model.ChatSession{s.Clone()}, m.sessions...)
	return nil
}

// Update implements Store.
func (m *MemoryStore) Update(_ context.Context, id string, msgs []model.Message, now time.Time) (model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return model.ChatSession{}, notFound(id)
	}
	m.sessions[i].ApplyMessages(msgs, now)
	return m.sessions[i].Clone(), nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
