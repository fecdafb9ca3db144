// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/attachment"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// Command is a slash command typed into the input.
type Command struct {
	Name        string
	Aliases     []string
	Args        string
	Description string
}

// Commands lists the slash commands in help order.
var Commands = []Command{
	{Name: "/attach", Aliases: []string{"/a"}, Args: "<path>", Description: "Attach a file to the next message"},
	{Name: "/detach", Description: "Remove the pending attachment"},
	{Name: "/delete", Description: "Delete all chats"},
	{Name: "/theme", Description: "Switch between light and dark mode"},
	{Name: "/copy", Description: "Copy the last reply"},
	{Name: "/viz", Description: "Open or close the visualization panel"},
	{Name: "/help", Aliases: []string{"/?"}, Description: "Show commands"},
	{Name: "/quit", Aliases: []string{"/q", "/exit"}, Description: "Exit"},
}

// LookupCommand resolves a name or alias.
func LookupCommand(name string) (Command, bool) {
	name = strings.ToLower(name)
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
		for _, a := range c.Aliases {
			if a == name {
				return c, true
			}
		}
	}
	return Command{}, false
}

// HelpText is the /help output.
func HelpText() string {
	var b strings.Builder
	for i, c := range Commands {
		if i > 0 {
			b.WriteString(" · ")
		}
		b.WriteString(c.Name)
		if c.Args != "" {
			b.WriteString(" " + c.Args)
		}
	}
	return b.String()
}

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	cmd, ok := LookupCommand(fields[0])
	if !ok {
		c := m.setStatus("Unknown command "+fields[0]+" (try /help)", true)
		return m, c
	}
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch cmd.Name {
	case "/attach":
		if arg == "" {
			c := m.setStatus("Usage: /attach <path>", true)
			return m, c
		}
		if m.session.Responding() {
			c := m.setStatus("Wait for the reply before attaching a file", true)
			return m, c
		}
		return m, attachCmd(arg)

	case "/detach":
		if m.session.Detach() == nil {
			c := m.setStatus("No file attached", false)
			return m, c
		}
		c := m.setStatus("Attachment removed", false)
		return m, c

	case "/delete":
		m.confirmDelete = true
		return m, nil

	case "/theme":
		return m.toggleTheme(), nil

	case "/copy":
		return m.copyLast()

	case "/viz":
		return m.togglePanel()

	case "/help":
		c := m.setStatus(HelpText(), false)
		return m, c

	case "/quit":
		m.session.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func attachCmd(path string) tea.Cmd {
	return func() tea.Msg {
		att, err := attachment.Load(path)
		return attachmentMsg{att: att, err: err}
	}
}
