// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/credentials"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/logging"
)

func newAPIKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the saved agent API key",
		Long: `The API key is sealed with AES-256-GCM under a key derived from this
user and machine, so a copied credentials file is useless elsewhere.
ZUSCHAT_API_KEY, when set, takes precedence over the saved key.`,
	}

	var fromStdin bool
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Prompt for the API key and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			switch {
			case fromStdin:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read API key: %w", err)
				}
				key = line
			case a.prompter != nil:
				v, err := a.prompter.Prompt("Enter your API key")
				if err != nil {
					return fmt.Errorf("read API key: %w", err)
				}
				key = v
			default:
				return errors.New("stdin is not a terminal; use --stdin")
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return credentials.ErrAPIKeyRequired
			}
			store, err := a.credentialStore()
			if err != nil {
				return err
			}
			if err := store.Save(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("API key saved ("+logging.Fingerprint(key)+")"))
			return nil
		},
	}
	setCmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the key from stdin")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.credentialStore()
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the API key comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := a.credentialStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, field("File", store.Path))
			if a.cfg.Agent.APIKey != "" {
				fmt.Fprintln(out, field("Source", "ZUSCHAT_API_KEY"))
				fmt.Fprintln(out, field("Fingerprint", logging.Fingerprint(a.cfg.Agent.APIKey)))
				return nil
			}
			key, err := store.Load()
			switch {
			case errors.Is(err, credentials.ErrNoKey):
				fmt.Fprintln(out, field("Source", "none (you will be asked on first use)"))
			case errors.Is(err, credentials.ErrUnseal):
				fmt.Fprintln(out, field("Source", warningStyle.Render("saved key cannot be unsealed here; run \"zuschat apikey set\"")))
			case err != nil:
				return err
			default:
				fmt.Fprintln(out, field("Source", "saved"))
				fmt.Fprintln(out, field("Fingerprint", logging.Fingerprint(key)))
			}
			return nil
		},
	}

	cmd.AddCommand(setCmd, clearCmd, statusCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("zuschat "+Version))
			fmt.Fprintln(out, field("Commit", GitCommit))
			fmt.Fprintln(out, field("Built", BuildDate))
			fmt.Fprintln(out, field("Go", runtime.Version()))
			fmt.Fprintln(out, field("Platform", runtime.GOOS+"/"+runtime.GOARCH))
		},
	}
}
