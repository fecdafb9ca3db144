// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
)

// =============================================================================
// JSON HIGHLIGHTING (Chroma-based)
// =============================================================================

// jsonStyles maps the UI theme to a chroma style that reads well on it.
var jsonStyles = map[styles.Mode]string{
	styles.ModeLight: "github",
	styles.ModeDark:  "monokai",
}

// HighlightJSON colors an option document for the terminal. The document
// comes back unchanged when chroma cannot tokenise it.
func HighlightJSON(doc string, mode styles.Mode) string {
	name, ok := jsonStyles[mode]
	if !ok {
		name = jsonStyles[styles.ModeLight]
	}
	st := chromaStyles.Get(name)
	if st == nil {
		st = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		return doc
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, doc)
	if err != nil {
		return doc
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, st, iterator); err != nil {
		return doc
	}
	return buf.String()
}
