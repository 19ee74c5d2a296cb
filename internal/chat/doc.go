// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat runs one conversation: it turns a user turn into store
// events, talks to the backend and mirrors the result into storage.
//
// # Key Types
//
//   - Session: Send, Clear, Stats and history reload for one conversation
//   - Backend: The subset of backend.Client a Session needs
//   - Mirror: Store listener that persists every change
//
// # Exchange Flow
//
//  1. The user message (with its attachment note) is appended at once.
//  2. Attachments are read and base64-encoded.
//  3. Streaming: a placeholder is appended, every content frame is applied
//     to it as it arrives, and it is finalized on end, EOF or failure.
//     Single-shot: one completed bot message is appended.
//  4. Any failure appends exactly one "❌ Error: <message>" system message.
//
// Only one exchange runs at a time; a concurrent Send returns ErrBusy
// without touching the conversation.
package chat
