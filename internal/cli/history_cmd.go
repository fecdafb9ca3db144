// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect, export or delete the saved conversation",
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryExportCmd(a), newHistoryClearCmd(a))
	return cmd
}

func (a *app) loadHistory(cmd *cobra.Command) (*model.History, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	msgs, err := store.LoadHistory(contextOrBackground(cmd))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return model.HistoryFrom(msgs), nil
}

func newHistoryListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved messages, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.loadHistory(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			msgs := h.Messages()
			if len(msgs) == 0 {
				fmt.Fprintln(out, "No saved messages.")
				return nil
			}
			start := 0
			if limit > 0 && len(msgs) > limit {
				start = len(msgs) - limit
			}
			width := TerminalWidth(out) - 30
			for i, m := range msgs[start:] {
				file := ""
				if m.File != nil {
					file = " 📎 " + m.File.FileName
				}
				fmt.Fprintf(out, "%4d  %-4s %s  %s%s\n",
					start+i+1,
					m.Role.DisplayName(),
					m.Timestamp.Format("2006-01-02 15:04"),
					m.Preview(width),
					file)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last N messages")
	return cmd
}

func newHistoryExportCmd(a *app) *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the conversation as markdown or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.loadHistory(cmd)
			if err != nil {
				return err
			}
			var data []byte
			switch strings.ToLower(format) {
			case "md", "markdown":
				data = []byte(h.Markdown())
			case "json":
				data, err = json.MarshalIndent(h.Messages(), "", "  ")
				if err != nil {
					return fmt.Errorf("encode history: %w", err)
				}
				data = append(data, '\n')
			default:
				return fmt.Errorf("unknown format %q (want md or json)", format)
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := util.AtomicWriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render(fmt.Sprintf("Exported %d messages to %s", h.Len(), output)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "md or json")
	return cmd
}

func newHistoryClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm("Delete all chats? (y/N) ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := contextOrBackground(cmd)
			if err := store.ClearHistory(ctx); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			prefs, err := store.LoadPrefs(ctx)
			if err == nil && prefs.ChatsActive {
				prefs.ChatsActive = false
				err = store.SavePrefs(ctx, prefs)
			}
			if err != nil {
				return fmt.Errorf("update preferences: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("All chats deleted."))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on the terminal.
func confirm(question string) (bool, error) {
	if err := RequiresTTY("confirm"); err != nil {
		return false, errors.New("refusing to continue without --yes")
	}
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	answer, err := line.Prompt(question)
	if errors.Is(err, liner.ErrPromptAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes", nil
}
