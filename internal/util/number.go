// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with English digit grouping, matching what a
// browser's toLocaleString produces for the en-US locale.
var printer = message.NewPrinter(language.English)

// FormatGrouped formats v with thousands separators. Whole numbers print
// without a fractional part; other values keep up to three decimals.
func FormatGrouped(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	// Round to three decimals, then drop trailing zeros.
	rounded := math.Round(v*1000) / 1000
	s := printer.Sprintf("%.3f", rounded)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// Percent returns value as a percentage of total, or 0 when total is 0.
func Percent(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return value / total * 100
}

// FormatPercent formats value/total as a two-decimal percentage. An empty
// total yields "0" rather than a division by zero.
func FormatPercent(value, total float64) string {
	if total == 0 {
		return "0"
	}
	return strconv.FormatFloat(Percent(value, total), 'f', 2, 64)
}
