// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/agent"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/config"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/credentials"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/logging"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/storage"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APP STATE
// =============================================================================

// app holds what every command needs once flags are parsed.
type app struct {
	// Global flags
	configPath string
	logLevel   string
	theme      string
	backend    string
	vizSource  string

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error

	// prompter is nil when stdin cannot prompt.
	prompter credentials.Prompter
}

// setup loads configuration, applies flag overrides and opens the log.
func (a *app) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = strings.ToLower(a.logLevel)
	}
	if a.theme != "" {
		cfg.UI.Theme = a.theme
		if t := strings.ToLower(a.theme); t == "light" || t == "dark" {
			cfg.UI.Theme = t + "_mode"
		}
	}
	if a.backend != "" {
		cfg.Storage.Backend = strings.ToLower(a.backend)
	}
	if a.vizSource != "" {
		cfg.Viz.Source = a.vizSource
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg
	config.SetGlobal(cfg)

	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, closeFn, err := logging.New(logging.Options{Path: logPath, Level: cfg.Log.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger, closeFn = logging.Nop(), func() error { return nil }
	}
	a.logger = logger
	a.closeLog = closeFn

	if a.prompter == nil && IsTTY() {
		a.prompter = credentials.NewTermPrompter()
	}
	return nil
}

// close flushes the log. Safe to call when setup never ran.
func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

// -----------------------------------------------------------------------------
// Dependencies
// -----------------------------------------------------------------------------

func (a *app) openStore() (storage.Store, error) {
	dir, err := a.cfg.DataDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(a.cfg.Storage.Backend, dir)
	if err != nil {
		return nil, fmt.Errorf("open %s history store: %w", a.cfg.Storage.Backend, err)
	}
	a.logger.Debug("History store opened", zap.String("backend", a.cfg.Storage.Backend), zap.String("dir", dir))
	return store, nil
}

func (a *app) credentialStore() (*credentials.Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return credentials.NewStore(filepath.Join(dir, "credentials")), nil
}

// apiKey resolves the key from the environment, the sealed store, or a
// prompt when interactive is set.
func (a *app) apiKey(interactive bool) (string, error) {
	store, err := a.credentialStore()
	if err != nil {
		return "", err
	}
	var prompter credentials.Prompter
	if interactive {
		prompter = a.prompter
	}
	key, src, err := credentials.Resolve(a.cfg.Agent.APIKey, store, prompter)
	if err != nil {
		return "", err
	}
	a.logger.Info("API key resolved", zap.String("source", string(src)), logging.Secret("api_key", key))
	return key, nil
}

func (a *app) newClient() *agent.Client {
	return agent.NewClient(a.cfg.Agent.URL).
		WithTimeout(a.cfg.AgentTimeout()).
		WithRateLimit(a.cfg.Agent.RequestsPerMinute).
		WithLogger(a.logger.Named("agent"))
}

// source returns the visualization config source for threadID.
func (a *app) source(threadID string) viz.Source {
	loc := a.cfg.Viz.Source
	if loc == "" {
		loc = viz.ConfigURL(a.cfg.Viz.BaseURL, threadID, a.cfg.Viz.ConversationIndex)
	}
	return viz.ResolveSource(loc, &http.Client{Timeout: a.cfg.VizTimeout()})
}

// threadID returns the stored thread id, creating one on first use.
func (a *app) threadID(ctx context.Context, store storage.Store) string {
	id, err := storage.EnsureThreadID(ctx, store)
	if err != nil {
		a.logger.Warn("Could not load thread id", zap.Error(err))
		return ""
	}
	return id
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

const rootLong = `zuschat is a terminal client for the ZUS Coffee agent.

Run without a command to open the chat UI. Conversations are kept locally
and sent to the agent as a whole thread; charts the agent prepares can be
browsed in the visualization panel (Ctrl+V) or exported with "zuschat viz".`

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "zuschat",
		Short:         "Chat with the ZUS Coffee agent from the terminal",
		Long:          rootLong,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.zuschat/config.toml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.theme, "theme", "", "theme: light or dark")
	pf.StringVar(&a.backend, "storage", "", "history backend: json or sqlite")
	pf.StringVar(&a.vizSource, "viz-source", "", "visualization config URL, file:// URL or path")

	root.AddCommand(
		newTUICmd(a),
		newAskCmd(a),
		newReplCmd(a),
		newHistoryCmd(a),
		newVizCmd(a),
		newConfigCmd(a),
		newAPIKeyCmd(a),
		newVersionCmd(),
	)
	return root, a
}

// Execute runs the command line. Errors are printed to stderr and
// returned so main can set the exit code.
func Execute() error {
	root, a := newRootCmd()
	defer a.close()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return err
	}
	return nil
}
