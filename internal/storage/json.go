// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
)

const (
	historyFile = "chatHistory.json"
	prefsFile   = "prefs.json"
)

// JSONStore keeps each key in its own JSON file.
type JSONStore struct {
	// BaseDir holds the files. Default: ~/.zuschat/data/
	BaseDir string

	mu sync.Mutex
}

// NewJSONStore creates a store rooted at dir, creating it if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &JSONStore{BaseDir: dir}, nil
}

// LoadHistory implements Store.
func (s *JSONStore) LoadHistory(ctx context.Context) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msgs []*model.Message
	found, err := s.readJSON(historyFile, &msgs)
	if err != nil {
		return nil, err
	}
	if !found {
		return []*model.Message{}, nil
	}
	return model.HistoryFrom(msgs).Messages(), nil
}

// SaveHistory implements Store.
func (s *JSONStore) SaveHistory(ctx context.Context, msgs []*model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msgs == nil {
		msgs = []*model.Message{}
	}
	return s.writeJSON(historyFile, msgs)
}

// ClearHistory implements Store. Clearing a store with no history is not an
// error.
func (s *JSONStore) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(filepath.Join(s.BaseDir, historyFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove history: %w", err)
	}
	return nil
}

// LoadPrefs implements Store.
func (s *JSONStore) LoadPrefs(ctx context.Context) (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var p Prefs
	if _, err := s.readJSON(prefsFile, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

// SavePrefs implements Store.
func (s *JSONStore) SavePrefs(ctx context.Context, p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(prefsFile, p)
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) readJSON(name string, v interface{}) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return true, nil
}

func (s *JSONStore) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := util.AtomicWriteFile(filepath.Join(s.BaseDir, name), data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
