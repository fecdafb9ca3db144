// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the chat thread and user preferences.
//
// Two backends implement Store:
//   - JSONStore: one JSON file per key under the data directory, written
//     atomically. This is the default and mirrors the browser's
//     localStorage layout (chatHistory, theme, chatsActive, threadId).
//   - SQLiteStore: a single zuschat.db using the pure Go modernc driver.
//
// # Usage
//
//	store, err := storage.Open(storage.BackendJSON, dataDir)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	msgs, err := store.LoadHistory(ctx)
package storage
