// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/agent"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// Layout sizes in terminal rows.
const (
	headerHeight = 1
	footerHeight = 1
	inputHeight  = 3 // rounded border around one line
	noticeHeight = 1
	minChatWidth = 30
)

// errorText is the text shown in place of a failed reply.
func errorText(err error) string {
	var ae *agent.AgentError
	switch {
	case errors.As(err, &ae) && strings.TrimSpace(ae.Message) != "":
		return ae.Message
	case errors.Is(err, agent.ErrNoAPIKey):
		return "API key is required to continue."
	case errors.Is(err, agent.ErrTimeout):
		return "The agent took too long to respond. Please try again."
	case err != nil && strings.TrimSpace(err.Error()) != "":
		return "Unexpected error: " + err.Error()
	}
	return FailedText
}

// wrapText word-wraps s to width and hard-wraps words longer than width.
func wrapText(s string, width int) string {
	if width < 1 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

// formatTimestamp shows the time for today's messages and the date for
// older ones.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}
	return t.Format("02 Jan 15:04")
}

// chatWidth is the width of the conversation column.
func (m *Model) chatWidth() int {
	w := m.width
	if m.panelOpen && w-m.panelWidth >= minChatWidth {
		w -= m.panelWidth
	}
	if w < 1 {
		w = 80
	}
	return w
}

// panelActive reports whether the panel fits next to the chat.
func (m *Model) panelActive() bool {
	return m.panelOpen && m.width-m.panelWidth >= minChatWidth
}

// resize lays out the viewport and the chart region for a new terminal
// size.
func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.theme.SetSize(width, height)

	vh := height - headerHeight - footerHeight - inputHeight - noticeHeight
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = m.chatWidth()
	m.viewport.Height = vh
	m.input.Width = m.chatWidth() - 6

	// Panel: border and padding take 2 columns, title and hint 3 rows,
	// one row per item header.
	chartW := m.panelWidth - 4
	chartH := height - headerHeight - footerHeight - 3 - len(m.panel.Items())
	if chartH < 3 {
		chartH = 3
	}
	m.panel.Resize(chartW, chartH)
	m.refresh()
}
