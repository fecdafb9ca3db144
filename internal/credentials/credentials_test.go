// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{
		Path:       filepath.Join(t.TempDir(), "credentials"),
		Iterations: 1000,
		Identity:   func() string { return "tester@box" },
	}
}

type fakePrompter struct {
	answer string
	err    error
	calls  int
}

func (f *fakePrompter) Prompt(string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("  sk-zus-123  "))

	raw, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), SealedPrefix))
	assert.NotContains(t, string(raw), "sk-zus-123")

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-zus-123", got)
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := testStore(t).Load()
	assert.True(t, errors.Is(err, ErrNoKey))
}

func TestStore_SaveEmptyRejected(t *testing.T) {
	err := testStore(t).Save("   ")
	assert.True(t, errors.Is(err, ErrAPIKeyRequired))
	assert.Equal(t, "API key is required to continue.", err.Error())
}

func TestStore_WrongIdentityCannotUnseal(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("sk-zus-123"))

	other := *s
	other.Identity = func() string { return "someone@else" }
	_, err := other.Load()
	assert.True(t, errors.Is(err, ErrUnseal))
}

func TestStore_TamperedFile(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("sk-zus-123"))
	require.NoError(t, os.WriteFile(s.Path, []byte(SealedPrefix+"AAAA"), 0o600))

	_, err := s.Load()
	assert.True(t, errors.Is(err, ErrUnseal))
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Delete(), "deleting nothing")
	require.NoError(t, s.Save("k"))
	assert.True(t, s.Exists())
	require.NoError(t, s.Delete())
	assert.False(t, s.Exists())
	_, err := os.Stat(s.Path + ".salt")
	assert.True(t, os.IsNotExist(err))
}

func TestResolve_Precedence(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save("from-store"))
	p := &fakePrompter{answer: "from-prompt"}

	key, src, err := Resolve(" from-env ", s, p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
	assert.Equal(t, SourceEnv, src)

	key, src, err = Resolve("", s, p)
	require.NoError(t, err)
	assert.Equal(t, "from-store", key)
	assert.Equal(t, SourceStore, src)
	assert.Zero(t, p.calls)
}

func TestResolve_PromptsAndSaves(t *testing.T) {
	s := testStore(t)
	p := &fakePrompter{answer: " typed-key \n"}

	key, src, err := Resolve("", s, p)
	require.NoError(t, err)
	assert.Equal(t, "typed-key", key)
	assert.Equal(t, SourcePrompt, src)

	saved, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "typed-key", saved)
}

func TestResolve_EmptyPromptIsRequiredError(t *testing.T) {
	_, _, err := Resolve("", testStore(t), &fakePrompter{answer: ""})
	assert.True(t, errors.Is(err, ErrAPIKeyRequired))

	_, _, err = Resolve("", testStore(t), nil)
	assert.True(t, errors.Is(err, ErrAPIKeyRequired))
}

func TestTermPrompter_ReadsLineFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	_, _ = w.WriteString("piped-key\n")
	w.Close()

	var out strings.Builder
	p := &TermPrompter{In: r, Out: &out}
	got, err := p.Prompt("Enter your API key")
	require.NoError(t, err)
	assert.Equal(t, "piped-key", got)
	assert.Contains(t, out.String(), "Enter your API key: ")
}
