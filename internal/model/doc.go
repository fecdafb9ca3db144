// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the chat data structures.
//
// # Key Types
//
//   - Role: who sent a message (user or bot)
//   - Message: one entry in the thread, optionally with attachment metadata
//   - History: the ordered thread as persisted and sent to the agent
//
// # Usage
//
//	h := model.NewHistory()
//	h.Add(model.NewUserMessage("What drinkware do you sell?"))
//	payload := h.Payload() // []string, oldest first
package model
