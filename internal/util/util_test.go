// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	data := []byte(`[{"role":"user","message":"hi"}]`)

	if err := AtomicWriteFile(path, data, 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("content = %q, want %q", content, data)
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "prefs.json")
	if err := AtomicWriteFile(path, []byte("{}"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not created: %v", err)
	}
}

func TestAtomicWriteFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	if err := AtomicWriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(path, []byte("new"), 0600); err != nil {
		t.Fatal(err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "new" {
		t.Errorf("content = %q, want new", content)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 0, ""},
		{"hello", 2, "he"},
		{"kopi susu ☕ panas", 11, "kopi sus..."},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateWidth("abcdefghij", 6); got != "abc..." {
		t.Errorf("got %q, want abc...", got)
	}
	if got := TruncateWidth("abc", 0); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("got %q", got)
	}
	if got := PadRight("abcdef", 4); got != "abcdef" {
		t.Errorf("got %q", got)
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("a\r\nb\nc"); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

// =============================================================================
// NUMBER TESTS
// =============================================================================

func TestFormatGrouped(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{6000000, "6,000,000"},
		{45, "45"},
		{0, "0"},
		{-1234, "-1,234"},
		{1234.5, "1,234.5"},
		{0.125, "0.125"},
	}
	for _, tt := range tests {
		if got := FormatGrouped(tt.in); got != tt.want {
			t.Errorf("FormatGrouped(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(45, 100); got != "45.00" {
		t.Errorf("got %q, want 45.00", got)
	}
	if got := FormatPercent(1, 3); got != "33.33" {
		t.Errorf("got %q, want 33.33", got)
	}
	if got := FormatPercent(5, 0); got != "0" {
		t.Errorf("zero total: got %q, want 0", got)
	}
}
