// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viz manages the visualization side panel.
//
// A visualization server publishes a visualization_config.json per chat
// thread: an array of chart descriptions (bar, line or pie) with labelled
// values. The panel lists those charts as collapsible items. Expanding an
// item builds an ECharts-style option document for it and binds a live
// chart instance; collapsing it, or expanding another item, disposes that
// instance. At most one item is expanded, so at most one chart is live.
//
// # Key Types
//
//   - Config: one chart description as published by the server
//   - Option: the declarative chart description built from a Config
//   - Panel: the item list, expand state and live chart tracking
//   - Renderer, Chart: the chart library contract the panel drives
//   - Source: where configs are fetched from (HTTP or a local file)
//
// # Usage
//
//	panel := viz.NewPanel(renderer, logger)
//	configs := panel.LoadConfig(ctx, viz.NewHTTPSource(url, nil))
//	panel.LoadFromList(configs)
//	if err := panel.Toggle(configs[0].ID); err != nil {
//	    logger.Warn("render failed", zap.Error(err))
//	}
package viz
