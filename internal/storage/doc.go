// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat session persistence for gemclone.
//
// Three backends share one Store interface: an in-memory list that lives
// as long as the process (the default), a directory of JSON files, and a
// SQLite database. All of them list sessions newest-created first, derive the
// title on the first message update, and report unknown ids with
// ErrSessionNotFound.
//
// # Key Types
//
//   - Store: the backend-neutral session store
//   - MemoryStore, JSONStore, SQLiteStore: the backends
//   - Format: export formats (Markdown, JSON, YAML)
//
// # Usage
//
//	store, err := storage.Open(cfg.Storage)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	sessions, err := store.List(ctx)
//	updated, err := store.Update(ctx, id, messages, time.Now())
//
// # Storage Location
//
// The json backend writes ~/.gemclone/sessions/<id>.json with 0600
// permissions; the sqlite backend uses ~/.gemclone/sessions.db.
package storage
