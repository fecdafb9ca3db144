// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	ThemeLight = "light_mode"
	ThemeDark  = "dark_mode"
)

// Prefs are the small per-user settings kept next to the history.
type Prefs struct {
	// Theme is light_mode or dark_mode. Empty means never chosen.
	Theme string `json:"theme"`
	// ChatsActive is set once the thread has messages and cleared by
	// delete-all; the UI hides the suggestions while it is set.
	ChatsActive bool `json:"chats_active"`
	// ThreadID selects this client's visualization folder on the server.
	ThreadID string `json:"thread_id"`
}

// Store persists history and preferences.
type Store interface {
	// LoadHistory returns the saved thread, oldest first. A store that has
	// never been written returns an empty slice.
	LoadHistory(ctx context.Context) ([]*model.Message, error)
	// SaveHistory replaces the saved thread.
	SaveHistory(ctx context.Context, msgs []*model.Message) error
	// ClearHistory removes the saved thread.
	ClearHistory(ctx context.Context) error
	LoadPrefs(ctx context.Context) (Prefs, error)
	SavePrefs(ctx context.Context, p Prefs) error
	Close() error
}

// Open returns the backend named by backend, rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendJSON:
		return NewJSONStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(dir)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// EnsureThreadID returns the stored thread id, generating and saving one
// when none exists yet.
func EnsureThreadID(ctx context.Context, s Store) (string, error) {
	p, err := s.LoadPrefs(ctx)
	if err != nil {
		return "", err
	}
	if p.ThreadID != "" {
		return p.ThreadID, nil
	}
	p.ThreadID = uuid.NewString()
	if err := s.SavePrefs(ctx, p); err != nil {
		return "", err
	}
	return p.ThreadID, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = &StoreError{Message: "unknown storage backend"}

// ErrCorrupt is returned when stored data cannot be decoded.
var ErrCorrupt = &StoreError{Message: "stored data is corrupt"}

// StoreError represents a storage error that can be compared with errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
