// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the user-facing chat settings.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/gemclone/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultFileName is the settings file inside the gemclone directory.
const DefaultFileName = "settings.toml"

// DefaultPath returns ~/.gemclone/settings.toml, or a relative fallback when
// the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gemclone", DefaultFileName)
	}
	return filepath.Join(home, ".gemclone", DefaultFileName)
}

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists AppSettings as TOML. It remembers the last value it read
// or wrote so the watcher can ignore its own writes.
type FileStore struct {
	path string

	mu   sync.Mutex
	last AppSettings
	seen bool
}

// NewFileStore creates a store for the given path. An empty path uses DefaultPath.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path}
}

// Path returns the settings file location.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the settings file. A missing file yields Default() without error.
// Zero-valued fields are filled from the defaults before validation.
func (fs *FileStore) Load() (AppSettings, error) {
	s, err := readFile(fs.path)
	if err != nil {
		return Default(), err
	}
	fs.remember(s)
	return s, nil
}

// Save validates s and writes it atomically with 0600 permissions.
func (fs *FileStore) Save(s AppSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("# gemclone chat settings\n")
	buf.WriteString("# Edits made while gemclone is running are picked up automatically.\n\n")
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := util.AtomicWriteFile(fs.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	fs.remember(s)
	return nil
}

// Reset removes the settings file so the defaults apply again.
func (fs *FileStore) Reset() error {
	if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove settings: %w", err)
	}
	fs.remember(Default())
	return nil
}

func (fs *FileStore) remember(s AppSettings) {
	fs.mu.Lock()
	fs.last = s
	fs.seen = true
	fs.mu.Unlock()
}

// changed reports whether s differs from the last value read or written.
func (fs *FileStore) changed(s AppSettings) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return !fs.seen || fs.last != s
}

func readFile(path string) (AppSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read settings: %w", err)
	}

	s := Default()
	if _, err := toml.Decode(string(data), &s); err != nil {
		return Default(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	s.FillDefaults()
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}
