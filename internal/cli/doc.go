// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatbot command line.
//
// Commands:
//
//	chatbot                   full-screen chat (same as "chatbot tui")
//	chatbot chat              line-mode chat
//	chatbot ask [message]     one exchange, reply on stdout
//	chatbot history show      print the saved conversation
//	chatbot history stats     message counts
//	chatbot history clear     delete the saved conversation
//	chatbot history export    write Markdown or JSON
//	chatbot ping              check the backend
//	chatbot devserver         run a local echo backend
//	chatbot config show|path|init
//
// Persistent flags --config, --backend and --storage override the
// configuration file, which in turn is overridden by CHATBOT_* variables.
//
// Errors are returned, never printed by commands. Execute prints them once
// and maps them to exit codes with GetExitCode.
package cli
