// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the conversation as an append-only event log.
//
// Every change to the conversation is an Event. The current message sequence
// is never edited directly; it is the fold of Reduce over the log. Display
// and persistence observe the same events through Subscribe, so neither
// depends on the other.
//
// # Key Types
//
//   - Event: One recorded change (append, stream start, delta, finalize,
//     clear, replace)
//   - Reduce: Pure function from (messages, event) to messages
//   - Store: Thread-safe log plus the reduced view and its subscribers
//
// # Invariants
//
//   - At most one message has IsStreaming set, and it is the most recent
//     placeholder. Starting a new stream finalizes any previous one.
//   - Only the streaming placeholder is ever modified after being appended.
//   - Messages are removed only by Clear (or replaced wholesale by Replace).
package store
