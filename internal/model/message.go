// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "ZUS"
	default:
		return string(r)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// AttachmentMeta describes a file sent with a user message. The file data
// itself is never stored in history.
type AttachmentMeta struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	IsImage  bool   `json:"is_image"`
}

// Message is one entry in the chat thread.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	File      *AttachmentMeta `json:"file,omitempty"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(role Role, text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Message:   text,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) *Message {
	return NewMessage(RoleUser, text)
}

// NewBotMessage creates a bot message.
func NewBotMessage(text string) *Message {
	return NewMessage(RoleBot, text)
}

// WithAttachment records attachment metadata and returns m.
func (m *Message) WithAttachment(meta AttachmentMeta) *Message {
	m.File = &meta
	return m
}

// IsUser reports whether the user sent m.
func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// Preview returns a single-line truncated preview of the text.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.SingleLine(m.Message), maxLen)
}
