// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/agent"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/components"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case historyLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case responseMsg:
		return m.handleResponse(msg)

	case typingTickMsg:
		return m.handleTypingTick(msg)

	case attachmentMsg:
		return m.handleAttachment(msg)

	case vizLoadedMsg:
		return m.handleVizLoaded(msg), nil

	case VizReloadMsg:
		if !m.loaded {
			return m, nil
		}
		return m, m.loadVizCmd(false)

	case statusClearMsg:
		if msg.set.Equal(m.statusAt) {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// -----------------------------------------------------------------------------
// Startup
// -----------------------------------------------------------------------------

func (m Model) handleHistoryLoaded(msg historyLoadedMsg) (Model, tea.Cmd) {
	m.loaded = true
	var cmd tea.Cmd
	if msg.err != nil {
		m.logger.Error("Failed to load chat history", zap.Error(msg.err))
		cmd = m.setStatus("Could not load chat history: "+msg.err.Error(), true)
	}
	m.history = model.HistoryFrom(msg.messages)
	m.prefs = msg.prefs
	if m.prefs.ThreadID == "" {
		// No store, or it could not save one: use a thread id for this run.
		m.prefs.ThreadID = uuid.NewString()
	}
	if m.prefs.Theme != "" && styles.ParseMode(m.prefs.Theme) != m.theme.Mode {
		m.applyTheme(m.theme.Toggle())
	}
	if !m.history.IsEmpty() {
		m.prefs.ChatsActive = true
	}
	m.logger.Info("Chat history loaded", zap.Int("messages", m.history.Len()))
	m.refresh()
	m.viewport.GotoBottom()
	if m.vizDeferred {
		m.vizDeferred = false
		if m.panelOpen {
			cmd = tea.Batch(cmd, m.loadVizCmd(true))
		}
	}
	return m, cmd
}

// -----------------------------------------------------------------------------
// Keys
// -----------------------------------------------------------------------------

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		m.session.Stop()
		return m, tea.Quit
	}

	if m.confirmDelete {
		m.confirmDelete = false
		if key.Matches(msg, m.keyMap.ConfirmYes) {
			return m.deleteAll()
		}
		cmd := m.setStatus("Delete cancelled", false)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Stop):
		if m.session.Responding() {
			return m.stop(), nil
		}
		if m.focus == focusPanel {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Theme):
		return m.toggleTheme(), nil

	case key.Matches(msg, m.keyMap.Copy):
		return m.copyLast()

	case key.Matches(msg, m.keyMap.Panel):
		return m.togglePanel()

	case key.Matches(msg, m.keyMap.DeleteAll):
		m.confirmDelete = true
		return m, nil

	case key.Matches(msg, m.keyMap.Focus):
		if m.panelOpen {
			m.switchFocus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusPanel {
		return m.handlePanelKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Up) && m.suggestionsVisible() && m.input.Value() == "":
		m.moveSuggestion(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down) && m.suggestionsVisible() && m.input.Value() == "":
		m.moveSuggestion(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		text := m.input.Value()
		if strings.TrimSpace(text) == "" && m.suggestionsVisible() && m.suggestion >= 0 {
			text = Suggestions[m.suggestion]
		}
		if strings.HasPrefix(strings.TrimSpace(text), "/") {
			m.input.Reset()
			return m.runCommand(strings.TrimSpace(text))
		}
		return m.Submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.panel.Items()
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.selected < len(items)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keyMap.Submit):
		cmd := m.ToggleSelected()
		return m, cmd
	case key.Matches(msg, m.keyMap.Left), key.Matches(msg, m.keyMap.Right):
		delta := 1
		if key.Matches(msg, m.keyMap.Left) {
			delta = -1
		}
		if id, ok := m.panel.Expanded(); ok {
			if c, ok := m.panel.Chart(id); ok {
				if tc, ok := c.(*components.TermChart); ok {
					tc.MoveFocus(delta)
				}
			}
		}
	}
	return m, nil
}

// -----------------------------------------------------------------------------
// Submit / response
// -----------------------------------------------------------------------------

// Submit sends text as a user message. Empty text is ignored, as is any
// submit while a reply is still in progress.
func (m Model) Submit(text string) (Model, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" || m.session.Responding() {
		return m, nil
	}

	m.input.Reset()
	m.suggestion = -1
	m.confirmDelete = false

	msg := model.NewUserMessage(text)
	if att := m.session.Detach(); att != nil {
		msg.WithAttachment(att.Meta())
	}
	m.history.Add(msg)
	saveCmd := m.persistHistory()
	m.setChatsActive(true)

	m.pending = &pendingReply{text: styles.ThinkingText}
	ctx, gen := m.session.Begin(context.Background())
	m.logger.Info("Sending message", zap.Int("gen", gen), zap.Int("thread_len", m.history.Len()),
		zap.Bool("attachment", msg.File != nil))

	m.refresh()
	m.viewport.GotoBottom()
	return m, tea.Batch(askCmd(ctx, m.client, m.apiKey, m.history.Payload(), gen), m.spinner.Tick, saveCmd)
}

func (m Model) handleResponse(msg responseMsg) (tea.Model, tea.Cmd) {
	if !m.session.Current(msg.gen) {
		return m, nil
	}
	m.session.Finish(msg.gen)

	if msg.err != nil {
		if errors.Is(msg.err, agent.ErrCancelled) {
			m.pending = &pendingReply{text: StoppedText, stopped: true}
		} else {
			m.logger.Warn("Agent request failed", zap.Int("gen", msg.gen), zap.Error(msg.err))
			m.pending = &pendingReply{text: errorText(msg.err), failed: true}
		}
		m.refresh()
		return m, nil
	}

	answer := strings.TrimSpace(msg.resp.Answer)
	bot := model.NewBotMessage(answer)
	m.history.Add(bot)
	saveCmd := m.persistHistory()
	m.pending = nil
	m.logger.Info("Agent replied", zap.Int("gen", msg.gen), zap.Duration("elapsed", msg.resp.Elapsed()))

	cmds := []tea.Cmd{saveCmd}
	if m.session.StartTyping(msg.gen, answer) {
		m.typingID = bot.ID
		cmds = append(cmds, typingTick(m.typingDelay, msg.gen))
	}
	if m.panelOpen && m.loaded {
		cmds = append(cmds, m.loadVizCmd(false))
	}
	m.refresh()
	m.viewport.GotoBottom()
	return m, tea.Batch(cmds...)
}

func (m Model) handleTypingTick(msg typingTickMsg) (tea.Model, tea.Cmd) {
	_, done, ok := m.session.Advance(msg.gen)
	if !ok {
		return m, nil
	}
	if done {
		m.typingID = ""
	}
	follow := m.viewport.AtBottom()
	m.refresh()
	if follow {
		m.viewport.GotoBottom()
	}
	if done {
		return m, nil
	}
	return m, typingTick(m.typingDelay, msg.gen)
}

// stop cancels the request or typing effect. A request still waiting for
// the agent is replaced by the stopped notice; a reply being typed is shown
// in full.
func (m Model) stop() Model {
	inFlight := m.session.InFlight()
	if !m.session.Stop() {
		return m
	}
	if inFlight {
		m.pending = &pendingReply{text: StoppedText, stopped: true}
	}
	m.typingID = ""
	m.logger.Info("Response stopped", zap.Bool("in_flight", inFlight))
	m.refresh()
	return m
}

// -----------------------------------------------------------------------------
// Actions
// -----------------------------------------------------------------------------

func (m Model) deleteAll() (Model, tea.Cmd) {
	m.session.Stop()
	m.pending = nil
	m.typingID = ""
	m.history.Clear()
	if m.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		err := m.store.ClearHistory(ctx)
		cancel()
		if err != nil {
			m.logger.Error("Failed to clear chat history", zap.Error(err))
			cmd := m.setStatus("Could not delete stored chats: "+err.Error(), true)
			m.setChatsActive(false)
			m.refresh()
			return m, cmd
		}
	}
	cmd := m.setStatus("All chats deleted", false)
	m.setChatsActive(false)
	m.refresh()
	return m, cmd
}

func (m Model) toggleTheme() Model {
	m.applyTheme(m.theme.Toggle())
	m.prefs.Theme = string(m.theme.Mode)
	m.savePrefs()
	m.refresh()
	return m
}

func (m *Model) applyTheme(t *styles.Theme) {
	m.theme = t
	m.renderer.SetTheme(t)
	// Rebind the live chart so it picks up the new colors.
	if id, ok := m.panel.Expanded(); ok {
		if err := m.panel.Render(id); err != nil {
			m.logger.Debug("Chart re-render failed", zap.Error(err))
		}
	}
}

func (m Model) copyLast() (tea.Model, tea.Cmd) {
	bot := m.history.LastBot()
	if bot == nil {
		cmd := m.setStatus("Nothing to copy yet", false)
		return m, cmd
	}
	if err := writeClipboard(bot.Message); err != nil {
		m.logger.Warn("Clipboard write failed", zap.Error(err))
		cmd := m.setStatus("Copy failed: "+err.Error(), true)
		return m, cmd
	}
	cmd := m.setStatus("Copied last reply", false)
	return m, cmd
}

func (m Model) handleAttachment(msg attachmentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		cmd := m.setStatus("Attach failed: "+msg.err.Error(), true)
		return m, cmd
	}
	m.session.Attach(msg.att)
	m.logger.Info("File attached", zap.String("name", msg.att.FileName),
		zap.String("mime", msg.att.MimeType), zap.Int64("size", msg.att.Size))
	cmd := m.setStatus("Attached "+msg.att.Label(), false)
	return m, cmd
}

// -----------------------------------------------------------------------------
// Visualization panel
// -----------------------------------------------------------------------------

func (m Model) togglePanel() (tea.Model, tea.Cmd) {
	if m.panelOpen {
		m.panelOpen = false
		m.focus = focusInput
		m.input.Focus()
		m.resize(m.width, m.height)
		return m, nil
	}
	m.panelOpen = true
	m.focus = focusPanel
	m.input.Blur()
	m.resize(m.width, m.height)
	if !m.loaded {
		// The config URL needs the thread id from the stored prefs.
		m.vizDeferred = true
		return m, nil
	}
	return m, m.loadVizCmd(true)
}

func (m *Model) switchFocus() {
	if m.focus == focusPanel {
		m.focus = focusInput
		m.input.Focus()
		return
	}
	m.focus = focusPanel
	m.input.Blur()
}

func (m Model) handleVizLoaded(msg vizLoadedMsg) Model {
	expanded, wasExpanded := m.panel.Expanded()
	m.panel.SetConfigs(msg.configs)
	m.panel.Clear()
	m.panel.LoadFromList(msg.configs)

	items := m.panel.Items()
	if m.selected >= len(items) || (msg.open && !wasExpanded) {
		m.selected = 0
	}
	if wasExpanded {
		for i, it := range items {
			if it.ID == expanded {
				m.selected = i
				if err := m.panel.Toggle(expanded); err != nil {
					m.logger.Debug("Re-expand failed", zap.Error(err))
				}
				break
			}
		}
	}
	m.resize(m.width, m.height)
	return m
}

// ToggleSelected expands or collapses the highlighted panel item. A
// failure is shown in the status line; the returned cmd clears it.
func (m *Model) ToggleSelected() tea.Cmd {
	items := m.panel.Items()
	if m.selected < 0 || m.selected >= len(items) {
		return nil
	}
	if err := m.panel.Toggle(items[m.selected].ID); err != nil {
		return m.setStatus(vizErrorText(err), true)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (m *Model) moveSuggestion(delta int) {
	n := len(Suggestions)
	if m.suggestion < 0 {
		if delta > 0 {
			m.suggestion = 0
		} else {
			m.suggestion = n - 1
		}
	} else {
		m.suggestion = ((m.suggestion+delta)%n + n) % n
	}
	m.refresh()
}

func (m Model) suggestionsVisible() bool {
	return m.showSuggestions && m.history.IsEmpty() && m.pending == nil
}

func (m *Model) setChatsActive(active bool) {
	if m.prefs.ChatsActive == active {
		return
	}
	m.prefs.ChatsActive = active
	m.savePrefs()
}

func (m *Model) persistHistory() tea.Cmd {
	if m.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := m.store.SaveHistory(ctx, m.history.Messages()); err != nil {
		m.logger.Error("Failed to save chat history", zap.Error(err))
		return m.setStatus("Could not save chat history: "+err.Error(), true)
	}
	return nil
}

func (m *Model) savePrefs() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := m.store.SavePrefs(ctx, m.prefs); err != nil {
		m.logger.Error("Failed to save preferences", zap.Error(err))
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusErr = isErr
	m.statusAt = time.Now()
	return clearStatusAfter(m.statusAt)
}

func vizErrorText(err error) string {
	switch {
	case errors.Is(err, viz.ErrNotLoaded):
		return "Visualization data not loaded yet"
	case errors.Is(err, viz.ErrUnsupportedChart):
		return "Unsupported chart type"
	case errors.Is(err, viz.ErrNotFound):
		return "Visualization not found"
	}
	return err.Error()
}
