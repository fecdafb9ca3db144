// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for zuschat.
//
// Configuration is stored as TOML, with sensible defaults, .env files,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - AgentConfig: inference endpoint settings
//   - VizConfig: visualization config source settings
//   - StorageConfig: history backend selection
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ZUSCHAT_*)
//   - .env in the working directory, then ~/.zuschat/.env
//   - ~/.zuschat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	url := cfg.Agent.URL
package config
