// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and attachments.
//
// These are the records that flow between the message store, the stream
// consumer, the persistence adapter and the UI. Their JSON encoding is the
// stored history format, so field names are part of the on-disk contract.
//
// # Key Types
//
//   - Message: One chat entry with role, text, epoch-ms timestamp and
//     optional streaming id
//   - Role: Message role enumeration (user, bot, system)
//   - AttachedFile: Input-stage file reference, never persisted
//   - PreparedFile: Base64 payload sent to the backend with a request
//   - ChatStats: Counts derived from a message sequence
//
// # Usage
//
// Build messages for a conversation:
//
//	msgs := []model.Message{
//	    model.NewUserMessage("Hello"),
//	    model.NewSystemError(err),
//	}
//	stats := model.ComputeStats(msgs)
package model
