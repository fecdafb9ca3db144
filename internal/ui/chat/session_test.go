// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/attachment"
)

func TestSession_BeginCancelsPrevious(t *testing.T) {
	s := NewSession()
	ctx1, gen1 := s.Begin(context.Background())
	ctx2, gen2 := s.Begin(context.Background())

	assert.Error(t, ctx1.Err(), "first request should be cancelled")
	assert.NoError(t, ctx2.Err())
	assert.Equal(t, gen1+1, gen2)
	assert.False(t, s.Current(gen1))
	assert.True(t, s.Current(gen2))
	assert.True(t, s.InFlight())
}

func TestSession_FinishIgnoresStaleGeneration(t *testing.T) {
	s := NewSession()
	_, gen1 := s.Begin(context.Background())
	ctx2, gen2 := s.Begin(context.Background())

	s.Finish(gen1)
	assert.True(t, s.InFlight())
	assert.NoError(t, ctx2.Err())

	s.Finish(gen2)
	assert.False(t, s.InFlight())
	assert.Error(t, ctx2.Err(), "finish releases the context")
}

func TestSession_StopCancelsAndClears(t *testing.T) {
	s := NewSession()
	s.Attach(&attachment.Attachment{FileName: "menu.png"})
	ctx, gen := s.Begin(context.Background())

	assert.True(t, s.Stop())
	assert.Error(t, ctx.Err())
	assert.False(t, s.Responding())
	assert.Nil(t, s.Attachment())
	assert.False(t, s.Current(gen), "a late reply must be stale")

	assert.False(t, s.Stop(), "nothing left to stop")
}

func TestSession_TypingRevealsWordByWord(t *testing.T) {
	s := NewSession()
	_, gen := s.Begin(context.Background())
	s.Finish(gen)

	require.True(t, s.StartTyping(gen, "Kopi is ready"))
	assert.True(t, s.Responding())

	typed, done, ok := s.Advance(gen)
	assert.True(t, ok)
	assert.False(t, done)
	assert.Equal(t, "Kopi", typed)

	s.Advance(gen)
	typed, done, ok = s.Advance(gen)
	assert.True(t, ok)
	assert.True(t, done)
	assert.Equal(t, "Kopi is ready", typed)
	assert.False(t, s.Typing())
	assert.False(t, s.Responding())

	_, _, ok = s.Advance(gen)
	assert.False(t, ok)
}

func TestSession_TypingStaleOrEmpty(t *testing.T) {
	s := NewSession()
	_, gen := s.Begin(context.Background())
	assert.False(t, s.StartTyping(gen+1, "late"))
	assert.False(t, s.StartTyping(gen, ""))

	require.True(t, s.StartTyping(gen, "one two"))
	s.Stop()
	_, _, ok := s.Advance(gen)
	assert.False(t, ok, "stop ends the effect")
}

func TestSession_Detach(t *testing.T) {
	s := NewSession()
	assert.Nil(t, s.Detach())

	a := &attachment.Attachment{FileName: "receipt.pdf"}
	s.Attach(a)
	assert.Same(t, a, s.Attachment())
	assert.Same(t, a, s.Detach())
	assert.Nil(t, s.Attachment())
}
