// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the chat history to files.
//
// # Supported Formats
//
//   - Markdown: human-readable transcript with a metadata header
//   - JSON: the persisted message array, indented, re-importable
//
// # Usage
//
//	exp, err := export.ForFormat("md", nil)
//	path, err := export.ToFile(msgs, exp, opts)
package export
