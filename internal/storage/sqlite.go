// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat session persistence for gemclone.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/gemclone/internal/model"
)

// =============================================================================
// SCHEMA
// =============================================================================

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	id         TEXT NOT NULL,
	role       TEXT NOT NULL,
	text       TEXT NOT NULL,
	timestamp  INTEGER NOT NULL,
	is_error   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
`

// =============================================================================
// SQLITE STORE
// =============================================================================

// SQLiteStore keeps sessions in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. ":memory:" works
// for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store needs a database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if path != ":memory:" {
		_ = os.Chmod(path, 0600)
	}
	return &SQLiteStore{db: db}, nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]model.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM sessions ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []model.ChatSession{}
	index := map[string]int{}
	for rows.Next() {
		var sess model.ChatSession
		var created, updated int64
		if err := rows.Scan(&sess.ID, &sess.Title, &created, &updated); err != nil {
			rows.Close()
			return nil, err
		}
		sess.CreatedAt = fromUnixNano(created)
		sess.UpdatedAt = fromUnixNano(updated)
		sess.Messages = []model.Message{}
		index[sess.ID] = len(sessions)
		sessions = append(sessions, sess)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	msgRows, err := s.db.QueryContext(ctx,
		`SELECT session_id, id, role, text, timestamp, is_error FROM messages ORDER BY session_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var sessionID string
		msg, err := scanMessage(msgRows, &sessionID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[sessionID]; ok {
			sessions[i].Messages = append(sessions[i].Messages, msg)
		}
	}
	return sessions, msgRows.Err()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.ChatSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ChatSession{}, err
	}
	defer tx.Rollback()
	return getSession(ctx, tx, id)
}

func getSession(ctx context.Context, tx *sql.Tx, id string) (model.ChatSession, error) {
	sess := model.ChatSession{ID: id}
	var created, updated int64
	err := tx.QueryRowContext(ctx,
		`SELECT title, created_at, updated_at FROM sessions WHERE id = ?`, id).
		Scan(&sess.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ChatSession{}, notFound(id)
	}
	if err != nil {
		return model.ChatSession{}, err
	}
	sess.CreatedAt = fromUnixNano(created)
	sess.UpdatedAt = fromUnixNano(updated)

	rows, err := tx.QueryContext(ctx,
		`SELECT session_id, id, role, text, timestamp, is_error FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return model.ChatSession{}, err
	}
	defer rows.Close()

	sess.Messages = []model.Message{}
	for rows.Next() {
		var sessionID string
		msg, err := scanMessage(rows, &sessionID)
		if err != nil {
			return model.ChatSession{}, err
		}
		sess.Messages = append(sess.Messages, msg)
	}
	return sess, rows.Err()
}

func scanMessage(rows *sql.Rows, sessionID *string) (model.Message, error) {
	var msg model.Message
	var role string
	var ts int64
	var isError int
	if err := rows.Scan(sessionID, &msg.ID, &role, &msg.Text, &ts, &isError); err != nil {
		return model.Message{}, err
	}
	msg.Role = model.Role(role)
	msg.Timestamp = fromUnixNano(ts)
	msg.IsError = isError != 0
	return msg, nil
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, sess model.ChatSession) error {
	if sess.ID == "" {
		return ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sess.ID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return exists(sess.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Title, sess.CreatedAt.UnixNano(), sess.UpdatedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	if err := insertMessages(ctx, tx, sess.ID, sess.Messages); err != nil {
		return err
	}
	return tx.Commit()
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, id string, msgs []model.Message, now time.Time) (model.ChatSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ChatSession{}, err
	}
	defer tx.Rollback()

	sess, err := getSession(ctx, tx, id)
	if err != nil {
		return model.ChatSession{}, err
	}
	sess.ApplyMessages(msgs, now)

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?`,
		sess.Title, sess.UpdatedAt.UnixNano(), id); err != nil {
		return model.ChatSession{}, fmt.Errorf("failed to update session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return model.ChatSession{}, fmt.Errorf("failed to clear messages: %w", err)
	}
	if err := insertMessages(ctx, tx, id, sess.Messages); err != nil {
		return model.ChatSession{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.ChatSession{}, err
	}
	return sess, nil
}

func insertMessages(ctx context.Context, tx *sql.Tx, sessionID string, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (session_id, seq, id, role, text, timestamp, is_error) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, msg := range msgs {
		isError := 0
		if msg.IsError {
			isError = 1
		}
		if _, err := stmt.ExecContext(ctx, sessionID, i, msg.ID, string(msg.Role), msg.Text, msg.Timestamp.UnixNano(), isError); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}
	return nil
}

// Delete implements Store. Messages go with the session via the cascade.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
