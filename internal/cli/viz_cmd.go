// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/components"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/styles"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

func newVizCmd(a *app) *cobra.Command {
	var thread string
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "List, draw and export visualizations",
		Long: `viz works with the visualization configs the agent prepares for a thread.
When the server cannot be reached the built-in sample charts are used.`,
	}
	cmd.PersistentFlags().StringVar(&thread, "thread-id", "", "thread id (default: the saved thread)")
	cmd.AddCommand(
		newVizListCmd(a, &thread),
		newVizShowCmd(a, &thread),
		newVizOptionCmd(a, &thread),
		newVizExportCmd(a, &thread),
	)
	return cmd
}

// loadVizPanel loads the config set into a panel drawing with renderer.
func (a *app) loadVizPanel(cmd *cobra.Command, threadID string, renderer viz.Renderer) (*viz.Panel, error) {
	ctx := contextOrBackground(cmd)
	if threadID == "" && a.cfg.Viz.Source == "" {
		store, err := a.openStore()
		if err != nil {
			return nil, err
		}
		threadID = a.threadID(ctx, store)
		store.Close()
	}
	panel := viz.NewPanel(renderer, a.logger.Named("viz"))
	panel.LoadFromList(panel.LoadConfig(ctx, a.source(threadID)))
	return panel, nil
}

func lookupConfig(panel *viz.Panel, id string) (viz.Config, error) {
	cfg, ok := panel.Config(viz.ID(id))
	if !ok {
		return viz.Config{}, fmt.Errorf("%w: %s", viz.ErrNotFound, id)
	}
	return cfg, nil
}

func newVizListCmd(a *app, thread *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the visualizations for a thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := a.loadVizPanel(cmd, *thread, nil)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tNAME\tPOINTS\tTOTAL")
			for _, cfg := range panel.Configs() {
				total := util.FormatGrouped(cfg.Total())
				if u := cfg.Unit(); u != "" {
					total += " " + u
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", cfg.ID, cfg.Title(), cfg.Name, len(cfg.Data), total)
			}
			return tw.Flush()
		},
	}
}

func newVizShowCmd(a *app, thread *string) *cobra.Command {
	var height int
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Draw a visualization in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			theme := styles.NewTheme(styles.ParseMode(a.cfg.UI.Theme))
			panel, err := a.loadVizPanel(cmd, *thread, components.NewChartRenderer(theme))
			if err != nil {
				return err
			}
			cfg, err := lookupConfig(panel, args[0])
			if err != nil {
				return err
			}
			if cfg.Kind() == viz.ChartMap {
				return fmt.Errorf("%q is a map; maps are not drawn", cfg.Name)
			}
			panel.Resize(TerminalWidth(out)-2, height)
			if err := panel.Toggle(cfg.ID); err != nil {
				return err
			}
			defer panel.Dispose(cfg.ID)

			c, _ := panel.Chart(cfg.ID)
			tc, ok := c.(*components.TermChart)
			if !ok {
				return fmt.Errorf("no chart for %s", cfg.ID)
			}
			fmt.Fprintln(out, titleStyle.Render(cfg.Title()+" · "+cfg.Name))
			fmt.Fprintln(out, tc.View())
			return nil
		},
	}
	cmd.Flags().IntVar(&height, "height", 14, "chart height in rows")
	return cmd
}

func newVizOptionCmd(a *app, thread *string) *cobra.Command {
	return &cobra.Command{
		Use:   "option <id>",
		Short: "Print the chart option document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := a.loadVizPanel(cmd, *thread, nil)
			if err != nil {
				return err
			}
			cfg, err := lookupConfig(panel, args[0])
			if err != nil {
				return err
			}
			opt, err := viz.BuildOption(cfg)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(opt); err != nil {
				return fmt.Errorf("encode option: %w", err)
			}
			out := cmd.OutOrStdout()
			doc := buf.String()
			if ColorsEnabled(out) {
				doc = components.HighlightJSON(doc, styles.ParseMode(a.cfg.UI.Theme))
			}
			_, err = fmt.Fprint(out, doc)
			return err
		},
	}
}

func newVizExportCmd(a *app, thread *string) *cobra.Command {
	var (
		format        string
		output        string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a visualization as PNG, SVG or XLSX",
		Example: `  zuschat viz export 1 --format png
  zuschat viz export 2 -f xlsx -o market-share.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := viz.ParseFormat(format)
			if err != nil {
				return err
			}
			panel, err := a.loadVizPanel(cmd, *thread, nil)
			if err != nil {
				return err
			}
			cfg, err := lookupConfig(panel, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = exportName(cfg, f)
			}

			var buf bytes.Buffer
			if err := viz.Export(&buf, cfg, f, width, height); err != nil {
				return err
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := util.AtomicWriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.logger.Info("Visualization exported", zap.Stringer("viz_id", cfg.ID),
				zap.String("format", string(f)), zap.String("path", output))
			fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("Wrote "+output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "png", "png, svg or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default <name>.<format>)")
	cmd.Flags().IntVar(&width, "width", 1024, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 640, "image height in pixels")
	return cmd
}

// exportName derives a file name from the visualization name.
func exportName(cfg viz.Config, f viz.Format) string {
	name := strings.ToLower(strings.Join(strings.Fields(viz.SheetName(cfg.Name)), "-"))
	name = strings.Trim(filepath.Base(name), ".")
	if name == "" {
		name = "visualization-" + cfg.ID.String()
	}
	return name + "." + string(f)
}
