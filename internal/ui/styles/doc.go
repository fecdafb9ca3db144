// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the zuschat TUI.

# Color System (colors.go)

Colors are Lip Gloss AdaptiveColor values. Which half applies is decided by
the active Mode rather than terminal detection, so the light/dark toggle in
the chat view is honored even on terminals that misreport their background.

	ZusBlue   - Brand color, header, user bubbles
	Latte     - Bot bubbles
	Gold      - Top-ranked chart bars, highlights
	Rose      - Errors

# Theme (theme.go)

A Theme is built for one Mode and holds every lipgloss.Style the chat view
uses. Toggling the mode rebuilds the styles:

	theme := styles.NewTheme(styles.ModeDark)
	theme = theme.Toggle()

# Animations (animations.go)

ThinkingSpinner drives the "Thinking.." placeholder while the agent works.
*/
package styles
