// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the storage, CLI and UI layers.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync and rename
//
// Text Layout:
//   - Truncate: Display-width aware truncation with an ellipsis
//   - Preview: Collapse a message to a single line for listings
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0644)
//	line := util.Preview(msg.Text, 60)
package util
