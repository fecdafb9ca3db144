// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/agent"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/storage"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/chat"
)

// conversation is a thread outside the TUI. With a store it continues
// and extends the saved thread; without one it lives in memory.
type conversation struct {
	store   storage.Store
	client  chat.Asker
	apiKey  string
	history *model.History
	logger  *zap.Logger
}

func newConversation(ctx context.Context, store storage.Store, client chat.Asker, apiKey string, logger *zap.Logger) (*conversation, error) {
	c := &conversation{
		store:   store,
		client:  client,
		apiKey:  apiKey,
		history: model.NewHistory(),
		logger:  logger,
	}
	if store != nil {
		msgs, err := store.LoadHistory(ctx)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		c.history = model.HistoryFrom(msgs)
	}
	return c, nil
}

// send appends text as a user message, asks the agent with the whole
// thread and appends the trimmed answer. A failed request leaves the user
// message in the thread and nothing else.
func (c *conversation) send(ctx context.Context, text string) (*model.Message, *agent.Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, agent.ErrEmptyThread
	}
	c.history.Add(model.NewUserMessage(text))
	if err := c.persist(); err != nil {
		return nil, nil, err
	}

	resp, err := c.client.Ask(ctx, c.apiKey, c.history.Payload())
	if err != nil {
		c.logger.Warn("Agent request failed", zap.Error(err))
		return nil, nil, err
	}

	bot := model.NewBotMessage(strings.TrimSpace(resp.Answer))
	c.history.Add(bot)
	if err := c.persist(); err != nil {
		return bot, resp, err
	}
	c.logger.Info("Agent replied", zap.Duration("elapsed", resp.Elapsed()), zap.Int("thread_len", c.history.Len()))
	return bot, resp, nil
}

// clear deletes the thread.
func (c *conversation) clear() error {
	c.history.Clear()
	if c.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// persist saves the thread with its own deadline so a cancelled request
// still records the user message.
func (c *conversation) persist() error {
	if c.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.SaveHistory(ctx, c.history.Messages()); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// failureText is the message printed for a failed request.
func failureText(err error) string {
	var ae *agent.AgentError
	switch {
	case errors.Is(err, agent.ErrCancelled):
		return chat.StoppedText
	case errors.As(err, &ae) && ae.Message != "":
		return ae.Message
	case errors.Is(err, agent.ErrTimeout):
		return "The agent took too long to respond."
	}
	return "Unexpected error: " + err.Error()
}
