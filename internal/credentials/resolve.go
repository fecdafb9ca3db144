// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for a secret.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Source says where Resolve found the key.
type Source string

const (
	SourceEnv    Source = "env"
	SourceStore  Source = "store"
	SourcePrompt Source = "prompt"
)

// Resolve finds the API key: envKey first, then the store, then the
// prompter. A prompted key is saved to the store. A nil prompter or empty
// input yields ErrAPIKeyRequired.
func Resolve(envKey string, store *Store, prompter Prompter) (string, Source, error) {
	if k := strings.TrimSpace(envKey); k != "" {
		return k, SourceEnv, nil
	}

	if store != nil {
		k, err := store.Load()
		switch {
		case err == nil && k != "":
			return k, SourceStore, nil
		case err != nil && !errors.Is(err, ErrNoKey) && !errors.Is(err, ErrUnseal):
			return "", "", err
		}
	}

	if prompter == nil {
		return "", "", ErrAPIKeyRequired
	}
	input, err := prompter.Prompt("Enter your API key")
	if err != nil {
		return "", "", fmt.Errorf("read API key: %w", err)
	}
	k := strings.TrimSpace(input)
	if k == "" {
		return "", "", ErrAPIKeyRequired
	}
	if store != nil {
		if err := store.Save(k); err != nil {
			return "", "", err
		}
	}
	return k, SourcePrompt, nil
}

// TermPrompter reads without echo when In is a terminal and falls back to
// reading a plain line otherwise (pipes, tests).
type TermPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTermPrompter prompts on stdin/stderr.
func NewTermPrompter() *TermPrompter {
	return &TermPrompter{In: os.Stdin, Out: os.Stderr}
}

// Prompt implements Prompter.
func (p *TermPrompter) Prompt(label string) (string, error) {
	fmt.Fprintf(p.Out, "%s: ", label)

	fd := int(p.In.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
