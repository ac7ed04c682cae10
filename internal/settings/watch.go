// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the user-facing chat settings.
package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watch blocks until ctx is done, calling onChange whenever the settings file
// is edited to a new valid value. The parent directory is watched so atomic
// renames are seen. Invalid edits are logged and skipped.
func (fs *FileStore) Watch(ctx context.Context, debounce time.Duration, log *zap.Logger, onChange func(AppSettings)) error {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(fs.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	name := filepath.Clean(fs.path)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("settings watcher error", zap.Error(err))

		case <-timer.C:
			s, err := readFile(fs.path)
			if err != nil {
				log.Warn("ignoring settings edit", zap.String("path", fs.path), zap.Error(err))
				continue
			}
			if !fs.changed(s) {
				continue
			}
			fs.remember(s)
			log.Info("settings file changed", zap.String("path", fs.path))
			onChange(s)
		}
	}
}
