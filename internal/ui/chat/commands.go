// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbot-tui/internal/attach"
	chatsvc "github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/util"
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// command is one slash command.
type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	run     func(m *Model, args []string) tea.Cmd
}

// commandList is populated in init; the handlers reach back into it
// through the help overlay.
var commandList []command

func init() {
	commandList = []command{
		{name: "/attach", aliases: []string{"/a"}, usage: "/attach <path>", help: "attach a file to the next message", run: cmdAttach},
		{name: "/detach", usage: "/detach <n|all>", help: "remove an attachment", run: cmdDetach},
		{name: "/clear", aliases: []string{"/c"}, usage: "/clear", help: "delete the chat history", run: cmdClear},
		{name: "/stats", aliases: []string{"/s"}, usage: "/stats", help: "show message counts", run: cmdStats},
		{name: "/stream", usage: "/stream [on|off]", help: "toggle token streaming", run: cmdStream},
		{name: "/theme", usage: "/theme", help: "switch dark/light theme", run: cmdTheme},
		{name: "/help", aliases: []string{"/h", "/?"}, usage: "/help", help: "show this help", run: cmdHelp},
		{name: "/quit", aliases: []string{"/q", "/exit"}, usage: "/quit", help: "exit", run: cmdQuit},
	}
}

// findCommand resolves a name or alias, case-insensitively.
func findCommand(name string) (command, bool) {
	name = strings.ToLower(name)
	for _, c := range commandList {
		if c.name == name {
			return c, true
		}
		for _, a := range c.aliases {
			if a == name {
				return c, true
			}
		}
	}
	return command{}, false
}

// runCommand executes a slash command line.
func (m *Model) runCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	c, ok := findCommand(fields[0])
	if !ok {
		m.setError(fmt.Sprintf("Unknown command %s. Type /help for a list.", fields[0]))
		return nil
	}
	return c.run(m, fields[1:])
}

// =============================================================================
// HANDLERS
// =============================================================================

func cmdAttach(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.setError("Usage: /attach <path>")
		return nil
	}
	path := util.ExpandHome(strings.Join(args, " "))
	f, err := attach.Open(path, m.opts.MaxAttachmentBytes)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	m.attachments = append(m.attachments, f)
	m.setNotice(fmt.Sprintf("Attached %s (%s)", f.Name, attach.FormatSize(f.Size)))
	return nil
}

func cmdDetach(m *Model, args []string) tea.Cmd {
	if len(m.attachments) == 0 {
		m.setError("No files attached")
		return nil
	}
	if len(args) == 0 {
		m.setError("Usage: /detach <n|all>")
		return nil
	}
	if strings.EqualFold(args[0], "all") {
		n := len(m.attachments)
		m.attachments = nil
		m.setNotice(fmt.Sprintf("Removed %d attachment(s)", n))
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(m.attachments) {
		m.setError(fmt.Sprintf("No attachment %q (have 1-%d)", args[0], len(m.attachments)))
		return nil
	}
	removed := m.attachments[n-1]
	m.attachments = append(m.attachments[:n-1:n-1], m.attachments[n:]...)
	m.setNotice("Removed " + removed.Name)
	return nil
}

func cmdClear(m *Model, _ []string) tea.Cmd {
	if m.loading {
		m.setError(chatsvc.ErrBusy.Error())
		return nil
	}
	m.overlay = overlayNone
	m.confirmClear = true
	return nil
}

func cmdStats(m *Model, _ []string) tea.Cmd {
	return statsCmd(m.ctx, m.session)
}

func cmdStream(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.streaming = !m.streaming
	} else {
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			m.streaming = true
		case "off", "false", "0":
			m.streaming = false
		default:
			m.setError("Usage: /stream [on|off]")
			return nil
		}
	}
	if m.streaming {
		m.setNotice("Streaming on")
	} else {
		m.setNotice("Streaming off: replies arrive in one piece")
	}
	return nil
}

func cmdTheme(m *Model, _ []string) tea.Cmd {
	m.theme = m.theme.Toggle()
	m.spinner.Style = m.theme.Spinner
	m.setNotice("Theme: " + m.theme.Name)
	m.layout()
	m.refresh()
	return nil
}

func cmdHelp(m *Model, _ []string) tea.Cmd {
	m.overlay = overlayHelp
	return nil
}

func cmdQuit(m *Model, _ []string) tea.Cmd {
	m.cancelMgr.cancel()
	return tea.Quit
}
