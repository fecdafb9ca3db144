// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/storage"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/components"
)

type askOptions struct {
	thread bool
	raw    bool
	json   bool
}

func newAskCmd(a *app) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Long: `Ask sends one question to the agent and prints the answer as markdown.

With --thread the question continues the saved conversation and both the
question and the answer are stored. Without a question argument the
question is read from stdin.`,
		Example: `  zuschat ask "Which outlets open before 8am?"
  echo "List the tumblers" | zuschat ask --raw
  zuschat ask --thread "and the cheapest one?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" && !IsTTY() {
				b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
				if err != nil {
					return fmt.Errorf("read question: %w", err)
				}
				question = strings.TrimSpace(string(b))
			}
			if question == "" {
				return errors.New("no question given")
			}
			return a.runAsk(cmd, question, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.thread, "thread", "t", false, "continue and save the stored conversation")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the answer without markdown rendering")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the agent response as JSON")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, question string, opts askOptions) error {
	key, err := a.apiKey(a.prompter != nil)
	if err != nil {
		return err
	}

	var store storage.Store
	if opts.thread {
		if store, err = a.openStore(); err != nil {
			return err
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt)
	defer stop()

	conv, err := newConversation(ctx, store, a.newClient(), key, a.logger.Named("ask"))
	if err != nil {
		return err
	}
	bot, resp, err := conv.send(ctx, question)
	if err != nil {
		return errors.New(failureText(err))
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.json:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case opts.raw || !ColorsEnabled(out):
		_, err = fmt.Fprintln(out, bot.Message)
	default:
		_, err = fmt.Fprintln(out, components.RenderMarkdown(bot.Message, TerminalWidth(out)))
	}
	return err
}

// contextOrBackground guards commands run without ExecuteContext.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
