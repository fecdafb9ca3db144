// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders bot replies. Glamour renderers are built lazily and
// cached per width and mode; if glamour fails the text is word wrapped.
type Markdown struct {
	mu     sync.Mutex
	cache  map[markdownKey]*glamour.TermRenderer
	broken map[markdownKey]bool
}

type markdownKey struct {
	width int
	mode  styles.Mode
}

// NewMarkdown creates an empty renderer cache.
func NewMarkdown() *Markdown {
	return &Markdown{
		cache:  make(map[markdownKey]*glamour.TermRenderer),
		broken: make(map[markdownKey]bool),
	}
}

// Render renders md at width for mode.
func (m *Markdown) Render(md string, width int, mode styles.Mode) string {
	if width < 20 {
		width = 20
	}
	r := m.renderer(markdownKey{width: width, mode: mode})
	if r == nil {
		return wordwrap.String(md, width)
	}
	out, err := r.Render(md)
	if err != nil {
		return wordwrap.String(md, width)
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) renderer(key markdownKey) *glamour.TermRenderer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.cache[key]; ok {
		return r
	}
	if m.broken[key] {
		return nil
	}
	style := "light"
	if key.mode.IsDark() {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(key.width),
	)
	if err != nil {
		m.broken[key] = true
		return nil
	}
	m.cache[key] = r
	return r
}

// RenderMarkdown renders md once with the terminal's own background
// detection. Used by the non-interactive commands.
func RenderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
