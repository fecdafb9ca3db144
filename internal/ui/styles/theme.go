// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode is the color scheme. The values match the persisted preference.
type Mode string

const (
	ModeLight Mode = "light_mode"
	ModeDark  Mode = "dark_mode"
)

// ParseMode maps a stored preference to a Mode. Anything unrecognized
// falls back to the terminal's background.
func ParseMode(s string) Mode {
	switch s {
	case string(ModeLight), "light":
		return ModeLight
	case string(ModeDark), "dark":
		return ModeDark
	}
	if termenv.HasDarkBackground() {
		return ModeDark
	}
	return ModeLight
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == ModeDark {
		return ModeLight
	}
	return ModeDark
}

// IsDark reports whether m is the dark scheme.
func (m Mode) IsDark() bool { return m == ModeDark }

// Theme holds all the styled components for the application.
type Theme struct {
	Mode         Mode
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER / STATUS
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderHint  lipgloss.Style
	StatusBar   lipgloss.Style
	ShortcutKey lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel   lipgloss.Style
	UserBubble  lipgloss.Style
	BotLabel    lipgloss.Style
	BotBubble   lipgloss.Style
	Timestamp   lipgloss.Style
	Thinking    lipgloss.Style
	Stopped     lipgloss.Style
	ErrorText   lipgloss.Style
	Attachment  lipgloss.Style
	EmptyState  lipgloss.Style
	Suggestion  lipgloss.Style
	SuggestionN lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputBox      lipgloss.Style
	InputBoxBusy  lipgloss.Style
	PendingFile   lipgloss.Style
	Notice        lipgloss.Style
	ConfirmPrompt lipgloss.Style

	// ==========================================================================
	// VISUALIZATION PANEL
	// ==========================================================================

	Panel         lipgloss.Style
	PanelTitle    lipgloss.Style
	PanelItem     lipgloss.Style
	PanelSelected lipgloss.Style
	PanelHint     lipgloss.Style
	ChartAxis     lipgloss.Style
	ChartLabel    lipgloss.Style
}

// NewTheme builds a theme for mode and points lipgloss's adaptive colors at
// the matching half.
func NewTheme(mode Mode) *Theme {
	if mode != ModeLight && mode != ModeDark {
		mode = ParseMode(string(mode))
	}
	lipgloss.SetHasDarkBackground(mode.IsDark())
	t := &Theme{
		Mode:         mode,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// Toggle returns a theme for the other mode with the same size.
func (t *Theme) Toggle() *Theme {
	next := NewTheme(t.Mode.Other())
	next.SetSize(t.Width, t.Height)
	return next
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// Color resolves an adaptive color for the theme's mode.
func (t *Theme) Color(c lipgloss.AdaptiveColor) lipgloss.Color {
	if t.Mode.IsDark() {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(ZusBlue).
		Foreground(TextInverse).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(TextInverse).Background(ZusBlue)
	t.HeaderHint = lipgloss.NewStyle().Foreground(TextInverse).Background(ZusBlue).Faint(true)
	t.StatusBar = lipgloss.NewStyle().Background(SurfaceDim).Foreground(TextMuted).Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(ZusBlue).Bold(true)

	t.UserLabel = lipgloss.NewStyle().Foreground(ZusBlue).Bold(true)
	t.UserBubble = lipgloss.NewStyle().
		Background(UserBubbleBg).
		Foreground(UserBubbleFg).
		Padding(0, 1)
	t.BotLabel = lipgloss.NewStyle().Foreground(Latte).Bold(true)
	t.BotBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BotBubbleBorder).
		Padding(0, 1)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Thinking = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Stopped = lipgloss.NewStyle().Foreground(Rose).Italic(true)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
	t.Attachment = lipgloss.NewStyle().Foreground(Amber)
	t.EmptyState = lipgloss.NewStyle().Foreground(TextMuted).Align(lipgloss.Center)
	t.Suggestion = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.SuggestionN = lipgloss.NewStyle().Foreground(Gold).Bold(true)

	t.InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ZusBlue).
		Padding(0, 1)
	t.InputBoxBusy = t.InputBox.BorderForeground(Overlay)
	t.PendingFile = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.Notice = lipgloss.NewStyle().Foreground(Emerald)
	t.ConfirmPrompt = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.Panel = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(Overlay).
		PaddingLeft(1)
	t.PanelTitle = lipgloss.NewStyle().Foreground(ZusBlue).Bold(true)
	t.PanelItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.PanelSelected = lipgloss.NewStyle().Foreground(Gold).Bold(true)
	t.PanelHint = lipgloss.NewStyle().Foreground(TextMuted).Faint(true)
	t.ChartAxis = lipgloss.NewStyle().Foreground(Overlay)
	t.ChartLabel = lipgloss.NewStyle().Foreground(TextMuted)
}
