// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
)

// Styles for plain command output. lipgloss drops the colors when stdout
// is not a terminal.
var (
	titleStyle   = lipgloss.NewStyle().Foreground(styles.ZusBlue).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted)
	valueStyle   = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	promptStyle  = lipgloss.NewStyle().Foreground(styles.ZusBlue).Bold(true)
	botStyle     = lipgloss.NewStyle().Foreground(styles.Latte).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
)

// field renders "label: value" with aligned labels.
func field(label, value string) string {
	return labelStyle.Width(14).Render(label+":") + " " + valueStyle.Render(value)
}
