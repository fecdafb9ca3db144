// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "time"

// SpinnerConfig holds the frames of a text animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration of each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Frame returns frame n, wrapping around.
func (s SpinnerConfig) Frame(n int) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if n < 0 {
		n = -n
	}
	return s.Frames[n%len(s.Frames)]
}

// ThinkingSpinner animates the placeholder shown while waiting for a reply.
var ThinkingSpinner = SpinnerConfig{
	Frames: []string{"Thinking..", "Thinking...", "Thinking.", "Thinking.."},
	FPS:    4,
}

// ThinkingText is the placeholder's resting text.
const ThinkingText = "Thinking.."
