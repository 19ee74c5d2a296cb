// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the terminal chat interface.

The package implements the interactive screen on top of Bubble Tea. Every
change to the conversation goes through a chat.Session from the
internal/chat package; this package only renders the session's messages and
turns key presses into session calls.

# Key Components

## Model (model.go)

The Model holds view state: the transcript viewport, the input textarea,
pending attachments, the loading spinner and overlays (help, stats, the
clear-confirmation modal).

## Update Loop (update.go)

Store changes arrive as transcriptMsg values sent by Run through
Program.Send. Session calls always run inside tea.Cmds so that store
listeners never wait on the event loop.

## Commands (commands.go)

	/attach <path>    attach a file to the next message
	/detach <n|all>   remove attachments
	/clear            clear the history (asks first)
	/stats            message counts
	/stream on|off    toggle token streaming
	/theme            switch between dark and light
	/help             key and command reference
	/quit             exit

# Usage

	err := chat.Run(ctx, chat.Options{Session: session, Health: client})
*/
package chat
