// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/attachment"
)

// =============================================================================
// SESSION
// =============================================================================

// Session holds the mutable state of the current request: the pending
// attachment, the request's cancel function and the typing effect.
//
// It is used through a pointer so Bubble Tea's model copies share it.
type Session struct {
	mu         sync.Mutex
	attachment *attachment.Attachment
	cancel     context.CancelFunc
	gen        int
	inFlight   bool

	words  []string
	shown  int
	typing bool
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{}
}

// -----------------------------------------------------------------------------
// Attachment
// -----------------------------------------------------------------------------

// Attach sets the attachment for the next message.
func (s *Session) Attach(a *attachment.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachment = a
}

// Attachment returns the pending attachment, or nil.
func (s *Session) Attachment() *attachment.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachment
}

// Detach drops the pending attachment and returns it.
func (s *Session) Detach() *attachment.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.attachment
	s.attachment = nil
	return a
}

// -----------------------------------------------------------------------------
// Request lifecycle
// -----------------------------------------------------------------------------

// Begin starts a request and returns its context and generation. A request
// still in flight is cancelled first.
func (s *Session) Begin(parent context.Context) (context.Context, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.gen++
	s.inFlight = true
	s.typing = false
	s.words, s.shown = nil, 0
	return ctx, s.gen
}

// Current reports whether gen is the latest request.
func (s *Session) Current(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// Finish marks request gen as answered and releases its context.
func (s *Session) Finish(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.releaseLocked()
	s.inFlight = false
}

// Stop cancels the request in flight and the typing effect and drops the
// attachment. It reports whether anything was running. A reply that arrives
// after Stop belongs to a stale generation.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	running := s.inFlight || s.typing
	if running {
		s.gen++
	}
	s.releaseLocked()
	s.inFlight = false
	s.typing = false
	s.attachment = nil
	return running
}

// Responding reports whether a request is in flight or a reply is still
// being typed.
func (s *Session) Responding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight || s.typing
}

// InFlight reports whether a request is waiting for the agent.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Session) releaseLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// -----------------------------------------------------------------------------
// Typing effect
// -----------------------------------------------------------------------------

// StartTyping begins revealing text word by word for request gen. It
// returns false for a stale generation or empty text.
func (s *Session) StartTyping(gen int, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.words = strings.Split(text, " ")
	s.shown = 0
	s.typing = text != ""
	return s.typing
}

// Advance reveals the next word. It returns the text revealed so far and
// whether the effect has finished. ok is false when gen is stale or the
// effect was stopped.
func (s *Session) Advance(gen int) (typed string, done, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || !s.typing {
		return "", false, false
	}
	if s.shown < len(s.words) {
		s.shown++
	}
	done = s.shown >= len(s.words)
	if done {
		s.typing = false
	}
	return strings.Join(s.words[:s.shown], " "), done, true
}

// Typing reports whether the typing effect is running.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Typed returns the text revealed so far.
func (s *Session) Typed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.words[:s.shown], " ")
}
