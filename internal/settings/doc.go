// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the user-facing chat settings.
//
// AppSettings carries the model, the generation parameters, the thinking
// mode, the personality, the incognito flag and a few display options.
// There is one current value per process. It changes only through an
// explicit save, and every save rebuilds the chat context.
//
// # Key Types
//
//   - AppSettings: the settings record and its defaults
//   - FileStore: TOML persistence at ~/.gemclone/settings.toml
//   - Watch: fsnotify-based reload when the file is edited by hand
//
// # Usage
//
//	store := settings.NewFileStore(path)
//	s, err := store.Load()
//	s.EnableThinking = true
//	if err := s.Validate(); err == nil {
//	    err = store.Save(s)
//	}
package settings
