// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/chat"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the chat UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

// runTUI starts the Bubble Tea chat program.
func (a *app) runTUI(cmd *cobra.Command) error {
	if err := RequiresTTY("run the chat UI"); err != nil {
		return fmt.Errorf("%w (use \"zuschat ask\" for scripts)", err)
	}

	key, err := a.apiKey(true)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	m := chat.New(chat.Options{
		Store:       store,
		Client:      a.newClient(),
		APIKey:      key,
		Source:      a.source,
		Theme:       styles.ParseMode(a.cfg.UI.Theme),
		TypingDelay: a.cfg.TypingDelay(),
		PanelWidth:  a.cfg.UI.PanelWidth,
		Suggestions: a.cfg.UI.ShowSuggestions,
		Logger:      a.logger.Named("chat"),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	if w := a.startWatcher(func() { p.Send(chat.VizReloadMsg{}) }); w != nil {
		defer w.Close()
	}

	a.logger.Info("Chat UI started", zap.String("agent_url", a.cfg.Agent.URL),
		zap.String("backend", a.cfg.Storage.Backend))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI: %w", err)
	}
	a.logger.Info("Chat UI closed")
	return nil
}

// startWatcher watches a local visualization config when viz.watch is on.
// It returns nil when there is nothing to watch.
func (a *app) startWatcher(onChange func()) *viz.Watcher {
	if !a.cfg.Viz.Watch || a.cfg.Viz.Source == "" {
		return nil
	}
	fs, ok := viz.ResolveSource(a.cfg.Viz.Source, nil).(*viz.FileSource)
	if !ok {
		a.logger.Info("viz.watch ignored for remote source", zap.String("source", a.cfg.Viz.Source))
		return nil
	}
	w, err := viz.NewWatcher(fs.Path, 0, onChange, a.logger.Named("watch"))
	if err != nil {
		a.logger.Warn("Could not watch visualization config", zap.Error(err))
		return nil
	}
	if err := w.Start(); err != nil {
		a.logger.Warn("Could not watch visualization config", zap.Error(err))
		_ = w.Close()
		return nil
	}
	return w
}
