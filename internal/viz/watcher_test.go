// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viz

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viz.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))

	var calls atomic.Int32
	w, err := NewWatcher(path, 50*time.Millisecond, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"id":1}]`), 0600))
	}
	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_CloseWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "viz.json"), 0, func() {}, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
