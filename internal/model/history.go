// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"
)

// History is the ordered chat thread, oldest first.
//
// History is not safe for concurrent use; the TUI only touches it from
// its update loop.
type History struct {
	messages []*Message
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// HistoryFrom wraps msgs, dropping nil entries and entries with an
// unknown role. Missing ids and timestamps are filled in so older stores
// that only kept {role, message} still load.
func HistoryFrom(msgs []*Message) *History {
	h := &History{messages: make([]*Message, 0, len(msgs))}
	for _, m := range msgs {
		if m == nil || !m.Role.Valid() {
			continue
		}
		if m.ID == "" {
			m.ID = NewMessage(m.Role, "").ID
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now()
		}
		h.messages = append(h.messages, m)
	}
	return h
}

// Add appends m to the thread.
func (h *History) Add(m *Message) {
	h.messages = append(h.messages, m)
}

// Messages returns the thread. The slice is a copy; the messages are not.
func (h *History) Messages() []*Message {
	out := make([]*Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int {
	return len(h.messages)
}

// IsEmpty reports whether the thread has no messages.
func (h *History) IsEmpty() bool {
	return len(h.messages) == 0
}

// Clear removes every message.
func (h *History) Clear() {
	h.messages = nil
}

// Last returns the newest message, or nil.
func (h *History) Last() *Message {
	if len(h.messages) == 0 {
		return nil
	}
	return h.messages[len(h.messages)-1]
}

// LastBot returns the newest bot message, or nil.
func (h *History) LastBot() *Message {
	for i := len(h.messages) - 1; i >= 0; i-- {
		if h.messages[i].Role == RoleBot {
			return h.messages[i]
		}
	}
	return nil
}

// Payload returns the message texts in thread order. The agent treats even
// indexes as the human side and odd indexes as its own replies.
func (h *History) Payload() []string {
	out := make([]string, len(h.messages))
	for i, m := range h.messages {
		out[i] = m.Message
	}
	return out
}

// Markdown renders the thread as a markdown transcript.
func (h *History) Markdown() string {
	var b strings.Builder
	b.WriteString("# ZUS Coffee chat\n")
	for _, m := range h.messages {
		fmt.Fprintf(&b, "\n## %s (%s)\n\n", m.Role.DisplayName(), m.Timestamp.Format("2006-01-02 15:04"))
		if m.File != nil {
			fmt.Fprintf(&b, "_Attachment: %s (%s)_\n\n", m.File.FileName, m.File.MimeType)
		}
		b.WriteString(strings.TrimSpace(m.Message))
		b.WriteString("\n")
	}
	return b.String()
}
