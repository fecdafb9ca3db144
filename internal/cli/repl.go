// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/config"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/chat"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/components"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader provides line editing and input history for the REPL.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &lineReader{line: line, historyFile: filepath.Join(dir, "repl_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// read prompts for a line. Non-empty input is added to the history.
func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// close saves the input history (0600) and restores the terminal.
func (r *lineReader) close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

func completeCommand(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}
	var out []string
	for _, name := range replCommands {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			out = append(out, name)
		}
	}
	return out
}

// =============================================================================
// REPL SESSION
// =============================================================================

var replCommands = []string{"/help", "/history", "/clear", "/quit"}

// repl handles input lines. Output goes to out so it can be tested
// without a terminal.
type repl struct {
	conv     *conversation
	out      io.Writer
	markdown bool
	width    int

	mu     sync.Mutex
	cancel context.CancelFunc
}

// handleLine processes one input line and reports whether to continue.
func (r *repl) handleLine(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}
	if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
		return false
	}
	if strings.HasPrefix(input, "/") {
		return r.command(input)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	fmt.Fprintln(r.out, mutedStyle.Render("Thinking.."))
	bot, _, err := r.conv.send(reqCtx, input)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(failureText(err)))
		return true
	}
	r.printReply(bot)
	return true
}

// interrupt cancels the request in flight. It reports whether there was
// one.
func (r *repl) interrupt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

func (r *repl) command(input string) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/help", "/h", "/?":
		fmt.Fprintln(r.out, titleStyle.Render("Commands"))
		fmt.Fprintln(r.out, "  /history   show the conversation")
		fmt.Fprintln(r.out, "  /clear     delete all chats")
		fmt.Fprintln(r.out, "  /quit      exit (also Ctrl+D)")
		fmt.Fprintln(r.out, "  Ctrl+C     stop the current reply")
	case "/history":
		if r.conv.history.IsEmpty() {
			fmt.Fprintln(r.out, mutedStyle.Render("No messages yet."))
			break
		}
		for _, m := range r.conv.history.Messages() {
			fmt.Fprintf(r.out, "%s %s\n", roleLabel(m), m.Preview(r.width-8))
		}
	case "/clear", "/c":
		if err := r.conv.clear(); err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			break
		}
		fmt.Fprintln(r.out, successStyle.Render("All chats deleted."))
	case "/quit", "/q", "/exit":
		return false
	default:
		fmt.Fprintln(r.out, warningStyle.Render("Unknown command "+input+" (try /help)"))
	}
	return true
}

func (r *repl) printReply(bot *model.Message) {
	fmt.Fprintln(r.out, botStyle.Render(bot.Role.DisplayName()))
	if r.markdown {
		fmt.Fprintln(r.out, components.RenderMarkdown(bot.Message, r.width))
		return
	}
	fmt.Fprintln(r.out, bot.Message)
}

func roleLabel(m *model.Message) string {
	if m.IsUser() {
		return promptStyle.Render(m.Role.DisplayName() + ":")
	}
	return botStyle.Render(m.Role.DisplayName() + ":")
}

// =============================================================================
// COMMAND
// =============================================================================

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "repl",
		Aliases: []string{"chat"},
		Short:   "Chat line by line without the full-screen UI",
		Long: `repl is a plain prompt for terminals where the full-screen UI is not
wanted. It shares the saved conversation with the chat UI.

Ctrl+C stops the reply being generated; Ctrl+D or /quit exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepl(cmd)
		},
	}
}

func (a *app) runRepl(cmd *cobra.Command) error {
	if err := RequiresTTY("run the REPL"); err != nil {
		return err
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

	ctx := contextOrBackground(cmd)
	conv, err := newConversation(ctx, store, a.newClient(), key, a.logger.Named("repl"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	r := &repl{
		conv:     conv,
		out:      out,
		markdown: ColorsEnabled(out),
		width:    TerminalWidth(out),
	}

	in := newLineReader()
	defer in.close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			if r.interrupt() {
				fmt.Fprintln(os.Stderr, warningStyle.Render("["+chat.StoppedText+"]"))
			}
		}
	}()

	fmt.Fprintln(out, titleStyle.Render("☕ ZUS Coffee Assistant"))
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d messages in this thread. Type /help for commands.", conv.history.Len())))
	a.logger.Info("REPL started", zap.Int("messages", conv.history.Len()))

	for {
		input, err := in.read(promptStyle.Render("zus> "))
		if err != nil {
			fmt.Fprintln(out)
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !r.handleLine(ctx, input) {
			return nil
		}
	}
}
