// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/components"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	chat := m.viewport.View()
	body := chat
	if m.panelActive() {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(m.chatWidth()).Render(chat),
			m.renderPanel())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderNotice(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// -----------------------------------------------------------------------------
// Chrome
// -----------------------------------------------------------------------------

func (m Model) renderHeader() string {
	t := m.theme
	left := t.HeaderTitle.Render("☕ ZUS Coffee Assistant")
	right := ""
	if !m.panelOpen {
		right = t.HeaderHint.Render("C-v visualizations")
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return t.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderNotice() string {
	t := m.theme
	var s string
	switch {
	case m.confirmDelete:
		s = t.ConfirmPrompt.Render("Delete all chats? (y/N)")
	case m.status != "" && m.statusErr:
		s = t.ErrorText.Render(m.status)
	case m.status != "":
		s = t.Notice.Render(m.status)
	case m.session.Attachment() != nil:
		s = t.PendingFile.Render("📎 " + m.session.Attachment().Label() + "  (/detach to remove)")
	}
	return util.TruncateWidth(s, m.chatWidth())
}

func (m Model) renderInput() string {
	style := m.theme.InputBox
	if m.session.Responding() || m.focus == focusPanel {
		style = m.theme.InputBoxBusy
	}
	return style.Width(m.chatWidth() - 2).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	t := m.theme
	var parts []string
	bindings := m.keyMap.ShortHelp()
	if m.focus == focusPanel {
		bindings = m.keyMap.PanelHelp()
	}
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, t.ShortcutKey.Render(h.Key)+" "+h.Desc)
	}
	left := strings.Join(parts, "  ")
	right := string(m.theme.Mode)
	if n := m.history.Len(); n > 0 {
		right = fmt.Sprintf("%d messages · %s", n, right)
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return t.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// -----------------------------------------------------------------------------
// Conversation
// -----------------------------------------------------------------------------

// refresh rebuilds the viewport content.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
}

func (m *Model) renderConversation() string {
	width := m.chatWidth() - 2
	if width < 20 {
		width = 20
	}
	if !m.loaded {
		return m.theme.EmptyState.Width(width).Render("Loading chats...")
	}

	var b strings.Builder
	if m.history.IsEmpty() && m.pending == nil {
		b.WriteString(m.renderWelcome(width))
	}

	now := time.Now()
	for _, msg := range m.history.Messages() {
		b.WriteString(m.renderMessage(msg, width, now))
		b.WriteString("\n\n")
	}
	if m.pending != nil {
		b.WriteString(m.renderPending(width))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderWelcome(width int) string {
	t := m.theme
	lines := []string{
		t.EmptyState.Width(width).Render("Hello there! How can I help you today?"),
		"",
	}
	if m.showSuggestions {
		for i, s := range Suggestions {
			style := t.Suggestion
			if i == m.suggestion {
				style = style.BorderForeground(t.Color(styles.Gold))
			}
			n := t.SuggestionN.Render(fmt.Sprintf("%d", i+1))
			lines = append(lines, style.Width(width-2).Render(n+" "+wrapText(s, width-8)))
		}
		lines = append(lines, t.PanelHint.Render("up/down to pick a suggestion, Enter to send"))
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func (m *Model) renderMessage(msg *model.Message, width int, now time.Time) string {
	t := m.theme
	stamp := t.Timestamp.Render(formatTimestamp(msg.Timestamp, now))

	if msg.IsUser() {
		header := t.UserLabel.Render(msg.Role.DisplayName()) + " " + stamp
		text := wrapText(msg.Message, width-4)
		parts := []string{header, t.UserBubble.Render(text)}
		if msg.File != nil {
			kind := "file"
			if msg.File.IsImage {
				kind = "image"
			}
			parts = append(parts, t.Attachment.Render(fmt.Sprintf("📎 %s (%s)", msg.File.FileName, kind)))
		}
		return strings.Join(parts, "\n")
	}

	header := t.BotLabel.Render(msg.Role.DisplayName()) + " " + stamp
	var body string
	if msg.ID == m.typingID {
		body = wrapText(m.session.Typed(), width-4)
	} else {
		body = m.markdown.Render(msg.Message, width-4, t.Mode)
	}
	return header + "\n" + t.BotBubble.Width(width-2).Render(body)
}

func (m *Model) renderPending(width int) string {
	t := m.theme
	header := t.BotLabel.Render(model.RoleBot.DisplayName())
	var body string
	switch {
	case m.pending.stopped:
		body = t.Stopped.Render(m.pending.text)
	case m.pending.failed:
		body = t.ErrorText.Render(wrapText(m.pending.text, width-4))
	case m.session.InFlight():
		body = t.Thinking.Render(m.spinner.View())
	default:
		body = t.Thinking.Render(m.pending.text)
	}
	return header + "\n" + t.BotBubble.Width(width-2).Render(body)
}

// -----------------------------------------------------------------------------
// Visualization panel
// -----------------------------------------------------------------------------

func (m Model) renderPanel() string {
	t := m.theme
	inner := m.panelWidth - 2
	lines := []string{t.PanelTitle.Render("Visualizations")}

	items := m.panel.Items()
	if len(items) == 0 {
		lines = append(lines, t.PanelHint.Render("Loading..."))
	}
	for i, it := range items {
		arrow := "▶"
		if it.Expanded {
			arrow = "▼"
		}
		label := fmt.Sprintf("%s %s · %s", arrow, it.Title(), it.Name)
		label = util.TruncateWidth(label, inner-2)
		if i == m.selected && m.focus == focusPanel {
			lines = append(lines, t.PanelSelected.Render("> "+label))
		} else {
			lines = append(lines, "  "+t.PanelItem.Render(label))
		}
		if it.Expanded {
			lines = append(lines, m.renderChartArea(it.ID, it.Name))
		}
	}

	lines = append(lines, "", t.PanelHint.Render("Enter toggle · ←/→ inspect · Tab chat · C-v close"))
	height := m.height - headerHeight - footerHeight - inputHeight - noticeHeight
	return t.Panel.Width(inner).Height(height).Render(strings.Join(lines, "\n"))
}

// renderChartArea shows the live chart, or the placeholder when the item
// has none.
func (m Model) renderChartArea(id viz.ID, name string) string {
	if c, ok := m.panel.Chart(id); ok {
		if tc, ok := c.(*components.TermChart); ok {
			if v := tc.View(); v != "" {
				return v
			}
		}
	}
	return m.theme.PanelHint.Render(name + " Visualization Area")
}
