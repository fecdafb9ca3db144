// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI pieces for the zuschat TUI and CLI.

# Display Components

TermChart (chart.go) - Terminal chart bound to a visualization panel item.
It implements viz.Chart; ChartRenderer implements viz.Renderer.

Markdown (markdown.go) - Glamour renderer for bot replies, cached per
width and color mode, falling back to reflow word wrapping.

CodeBlock (codeblock.go) - Chroma syntax highlighting, used for option
documents printed by the CLI.

# Usage

	renderer := components.NewChartRenderer(theme)
	panel := viz.NewPanel(renderer, logger)
	...
	if c, ok := panel.Chart(id); ok {
		fmt.Println(c.(*components.TermChart).View())
	}
*/
package components
