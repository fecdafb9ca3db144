// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/agent"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/storage"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/components"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// StoppedText replaces the placeholder when the user stops a request.
	StoppedText = "Response generation stopped."
	// FailedText is shown when a request fails without a message.
	FailedText = "Failed to generate response."

	storeTimeout = 5 * time.Second
)

// statusTimeout is how long status text stays up.
var statusTimeout = 4 * time.Second

// Suggestions are offered on an empty thread.
var Suggestions = []string{
	"Which ZUS outlets in Kuala Lumpur are open after 9pm?",
	"Show me the ZUS drinkware collection",
	"How much is the All Day Cup and what sizes does it come in?",
	"Compare the number of ZUS outlets in Selangor and Kuala Lumpur",
}

// =============================================================================
// INTERFACES
// =============================================================================

// Asker sends a thread to the agent. *agent.Client implements it.
type Asker interface {
	Ask(ctx context.Context, apiKey string, messages []string) (*agent.Response, error)
}

// SourceFunc returns the visualization config source for a thread.
type SourceFunc func(threadID string) viz.Source

// =============================================================================
// CHAT MODEL
// =============================================================================

// pendingReply is the bot bubble shown while a request is running or
// after it failed. It is never persisted.
type pendingReply struct {
	text    string
	failed  bool
	stopped bool
}

// focusArea is where key presses go.
type focusArea int

const (
	focusInput focusArea = iota
	focusPanel
)

// Options configures a chat Model.
type Options struct {
	Store       storage.Store
	Client      Asker
	APIKey      string
	Source      SourceFunc
	Theme       styles.Mode
	TypingDelay time.Duration
	PanelWidth  int
	Suggestions bool
	Logger      *zap.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Dependencies
	store    storage.Store
	client   Asker
	apiKey   string
	source   SourceFunc
	logger   *zap.Logger
	markdown *components.Markdown

	// Styling
	theme    *styles.Theme
	renderer *components.ChartRenderer

	// Dimensions
	width      int
	height     int
	panelWidth int

	// Conversation
	history  *model.History
	prefs    storage.Prefs
	session  *Session
	pending  *pendingReply
	typingID string // bot message being typed
	loaded   bool

	// vizDeferred marks a panel opened before the thread id was known.
	vizDeferred bool

	// Visualization panel
	panel     *viz.Panel
	panelOpen bool
	selected  int
	focus     focusArea

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Settings
	typingDelay     time.Duration
	showSuggestions bool
	suggestion      int // highlighted suggestion, -1 for none

	// Transient UI state
	confirmDelete bool
	status        string
	statusAt      time.Time
	statusErr     bool
}

// New creates a chat model.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = 10 * time.Millisecond
	}
	if opts.PanelWidth <= 0 {
		opts.PanelWidth = 48
	}

	theme := styles.NewTheme(opts.Theme)
	renderer := components.NewChartRenderer(theme)
	panel := viz.NewPanel(renderer, opts.Logger.Named("viz"))
	logger := opts.Logger
	panel.OnCreate(func(it viz.Item) {
		logger.Debug("Chart created", zap.Stringer("viz_id", it.ID), zap.String("type", string(it.Type)))
	})
	panel.OnDestroy(func(it viz.Item) {
		logger.Debug("Chart disposed", zap.Stringer("viz_id", it.ID))
	})

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask ZUS anything..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Spinner{
		Frames: styles.ThinkingSpinner.Frames,
		FPS:    styles.ThinkingSpinner.Duration(),
	}))

	return Model{
		store:           opts.Store,
		client:          opts.Client,
		apiKey:          opts.APIKey,
		source:          opts.Source,
		logger:          logger,
		markdown:        components.NewMarkdown(),
		theme:           theme,
		renderer:        renderer,
		panelWidth:      opts.PanelWidth,
		history:         model.NewHistory(),
		session:         NewSession(),
		panel:           panel,
		viewport:        viewport.New(80, 20),
		input:           ti,
		spinner:         sp,
		keyMap:          DefaultKeyMap(),
		typingDelay:     opts.TypingDelay,
		showSuggestions: opts.Suggestions,
		suggestion:      -1,
	}
}

// Init loads the stored thread.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadHistoryCmd(), textinput.Blink)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// History returns the thread.
func (m Model) History() *model.History { return m.history }

// Session returns the request session.
func (m Model) Session() *Session { return m.session }

// Panel returns the visualization panel.
func (m Model) Panel() *viz.Panel { return m.panel }

// Theme returns the active theme mode.
func (m Model) Theme() styles.Mode { return m.theme.Mode }

// Prefs returns the preferences as last saved.
func (m Model) Prefs() storage.Prefs { return m.prefs }

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadHistoryCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return historyLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		msgs, err := store.LoadHistory(ctx)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		prefs, err := store.LoadPrefs(ctx)
		if err != nil {
			return historyLoadedMsg{messages: msgs, err: err}
		}
		if prefs.ThreadID == "" {
			if id, err := storage.EnsureThreadID(ctx, store); err == nil {
				prefs.ThreadID = id
			}
		}
		return historyLoadedMsg{messages: msgs, prefs: prefs}
	}
}

func askCmd(ctx context.Context, client Asker, apiKey string, payload []string, gen int) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return responseMsg{gen: gen, err: agent.ErrNoAPIKey}
		}
		resp, err := client.Ask(ctx, apiKey, payload)
		return responseMsg{gen: gen, resp: resp, err: err}
	}
}

func typingTick(delay time.Duration, gen int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return typingTickMsg{gen: gen}
	})
}

func (m Model) loadVizCmd(open bool) tea.Cmd {
	panel := m.panel
	var src viz.Source
	if m.source != nil {
		src = m.source(m.prefs.ThreadID)
	}
	return func() tea.Msg {
		return vizLoadedMsg{configs: panel.LoadConfig(context.Background(), src), open: open}
	}
}

func clearStatusAfter(set time.Time) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{set: set}
	})
}
