// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// ZusBlue - Brand color, header, user bubbles
var ZusBlue = lipgloss.AdaptiveColor{Light: "#1B3F8B", Dark: "#5B8DEF"}

// ZusBlueDeep - Darker blue for backgrounds
var ZusBlueDeep = lipgloss.AdaptiveColor{Light: "#0F2A63", Dark: "#1E3A8A"}

// Latte - Bot message accent
var Latte = lipgloss.AdaptiveColor{Light: "#8B5E3C", Dark: "#D7B899"}

// Gold - Highlights and the top chart rank
var Gold = lipgloss.AdaptiveColor{Light: "#B98900", Dark: "#FFD500"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors and stop notices
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Emerald - Success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - Warnings, pending attachment
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Header and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#181825"}

// Overlay - Borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#45475A"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#7F849C"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#11111B"}

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1D4ED8"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E3A8A", Dark: "#E0F2FE"}

var BotBubbleBorder = lipgloss.AdaptiveColor{Light: "#C8A27C", Dark: "#8B5E3C"}
