// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config handles chatbot configuration.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. The TOML file at ~/.chatbot/config.toml
//  3. CHATBOT_* environment variables
//
// Command-line flags are applied on top by package cli.
//
// # Example config.toml
//
//	[backend]
//	url = "http://localhost:5050"
//	timeout = "2m"
//
//	[chat]
//	streaming = true
//
//	[storage]
//	driver = "sqlite"
//	stream_save_interval = "500ms"
//
// # Environment Variables
//
//	CHATBOT_BACKEND_URL, CHATBOT_CHAT_STREAMING, CHATBOT_STORAGE_DRIVER,
//	CHATBOT_STORAGE_PATH, CHATBOT_STORAGE_REDIS_URL, CHATBOT_UI_THEME, ...
//
// Every field's variable is its TOML path upper-cased with a CHATBOT_ prefix.
package config
