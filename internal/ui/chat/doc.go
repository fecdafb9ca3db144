// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for the ZUS agent.

The view owns the thread history and the visualization panel. All history
and panel mutations happen in Update; the agent request, the attachment
read and the visualization config fetch run as tea.Cmds and report back
with messages.

# Request state

Everything a request touches while it is in flight (the pending
attachment, the cancel function, the typing effect) lives on a Session.
Each request gets a generation number; replies and typing ticks from an
older generation are dropped.

# Keys

	Enter       send (or the highlighted suggestion on an empty thread)
	Esc         stop the response in flight
	Ctrl+T      toggle light/dark
	Ctrl+Y      copy the last reply
	Ctrl+V      open/close the visualization panel
	Tab         move focus between input and panel
	Ctrl+X      delete all chats (asks first)
	Ctrl+C      quit

# Commands

	/attach <path>   attach a file to the next message
	/detach          drop the pending attachment
	/delete          delete all chats
	/theme           toggle light/dark
	/copy            copy the last reply
	/viz             open the visualization panel
	/help            list commands
*/
package chat
