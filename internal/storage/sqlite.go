// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT NOT NULL UNIQUE,
	role      TEXT NOT NULL,
	message   TEXT NOT NULL,
	ts        INTEGER NOT NULL,
	file_json TEXT
);
CREATE TABLE IF NOT EXISTS prefs (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore keeps history and preferences in zuschat.db.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) dir/zuschat.db.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	path := filepath.Join(dir, "zuschat.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; the TUI never needs more.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// LoadHistory implements Store.
func (s *SQLiteStore) LoadHistory(ctx context.Context) ([]*model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, role, message, ts, file_json FROM messages ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	msgs := []*model.Message{}
	for rows.Next() {
		var (
			m        model.Message
			role     string
			ts       int64
			fileJSON sql.NullString
		)
		if err := rows.Scan(&m.ID, &role, &m.Message, &ts, &fileJSON); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = model.Role(role)
		m.Timestamp = time.UnixMilli(ts)
		if fileJSON.Valid && fileJSON.String != "" {
			var meta model.AttachmentMeta
			if err := json.Unmarshal([]byte(fileJSON.String), &meta); err != nil {
				return nil, fmt.Errorf("%w: attachment of %s: %v", ErrCorrupt, m.ID, err)
			}
			m.File = &meta
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return model.HistoryFrom(msgs).Messages(), nil
}

// SaveHistory implements Store. The table is rewritten in one transaction.
func (s *SQLiteStore) SaveHistory(ctx context.Context, msgs []*model.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (id, role, message, ts, file_json) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		var fileJSON sql.NullString
		if m.File != nil {
			data, err := json.Marshal(m.File)
			if err != nil {
				return fmt.Errorf("encode attachment: %w", err)
			}
			fileJSON = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, m.ID, string(m.Role), m.Message, m.Timestamp.UnixMilli(), fileJSON); err != nil {
			return fmt.Errorf("insert message %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// ClearHistory implements Store.
func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}

// LoadPrefs implements Store.
func (s *SQLiteStore) LoadPrefs(ctx context.Context) (Prefs, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM prefs")
	if err != nil {
		return Prefs{}, fmt.Errorf("query prefs: %w", err)
	}
	defer rows.Close()

	var p Prefs
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Prefs{}, fmt.Errorf("scan pref: %w", err)
		}
		switch key {
		case "theme":
			p.Theme = value
		case "chatsActive":
			p.ChatsActive, _ = strconv.ParseBool(value)
		case "threadId":
			p.ThreadID = value
		}
	}
	return p, rows.Err()
}

// SavePrefs implements Store.
func (s *SQLiteStore) SavePrefs(ctx context.Context, p Prefs) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	values := map[string]string{
		"theme":       p.Theme,
		"chatsActive": strconv.FormatBool(p.ChatsActive),
		"threadId":    p.ThreadID,
	}
	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO prefs (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			k, v); err != nil {
			return fmt.Errorf("save pref %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
