// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
)

func TestMarkdown_RenderAndCache(t *testing.T) {
	md := NewMarkdown()
	out := md.Render("**Kopi Susu** is RM 9.90", 40, styles.ModeLight)
	assert.Contains(t, plain(out), "Kopi Susu")
	assert.NotContains(t, plain(out), "**")

	md.Render("again", 40, styles.ModeLight)
	md.Render("again", 40, styles.ModeDark)
	assert.Len(t, md.cache, 2)
}

func TestHighlightJSON(t *testing.T) {
	doc := "{\n  \"type\": \"bar\"\n}\n"
	for _, mode := range []styles.Mode{styles.ModeLight, styles.ModeDark, "sepia"} {
		out := HighlightJSON(doc, mode)
		assert.Equal(t, doc, plain(out), "mode %s", mode)
	}
}
