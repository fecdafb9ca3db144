// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/agent"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/attachment"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/storage"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

// =============================================================================
// STARTUP
// =============================================================================

// historyLoadedMsg carries the stored thread and preferences.
type historyLoadedMsg struct {
	messages []*model.Message
	prefs    storage.Prefs
	err      error
}

// =============================================================================
// AGENT
// =============================================================================

// responseMsg is the agent's reply to request gen.
type responseMsg struct {
	gen  int
	resp *agent.Response
	err  error
}

// typingTickMsg reveals the next word of request gen.
type typingTickMsg struct {
	gen int
}

// =============================================================================
// ATTACHMENT
// =============================================================================

// attachmentMsg is the result of reading a file for /attach.
type attachmentMsg struct {
	att *attachment.Attachment
	err error
}

// =============================================================================
// VISUALIZATION
// =============================================================================

// vizLoadedMsg carries a fresh config set. open is set when the load was
// triggered by opening the panel.
type vizLoadedMsg struct {
	configs []viz.Config
	open    bool
}

// VizReloadMsg asks the view to reload the visualization config, e.g.
// after the watched file changed.
type VizReloadMsg struct{}

// =============================================================================
// STATUS
// =============================================================================

// statusClearMsg clears status text set at the given time.
type statusClearMsg struct {
	set time.Time
}
