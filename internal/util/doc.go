// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across zuschat.
//
// # Key Functions
//
// Files:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//
// Strings:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, PadRight: display-width aware helpers for terminal layout
//
// Numbers:
//   - FormatGrouped: digit grouping ("6,000,000") the way chart tooltips show values
//   - FormatPercent: two-decimal percentage that collapses to "0" on an empty total
//
// # Usage
//
//	display := util.TruncateRunes(longText, 50)
//	label := util.FormatGrouped(6000000) // "6,000,000"
//	err := util.AtomicWriteFile(path, data, 0600)
package util
