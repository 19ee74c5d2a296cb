// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the chat history in a single key-value slot.
//
// The history is one JSON array of model.Message records stored under a
// fixed key (DefaultKey). A Slot abstracts where those bytes live; History
// layers the save/load/clear/stats contract on top of any Slot.
//
// # Key Types
//
//   - Slot: Get/Put/Delete of one value under one key
//   - FileSlot: JSON file written atomically (default)
//   - SQLiteSlot: Row in a kv table via modernc.org/sqlite
//   - RedisSlot: Redis string key via go-redis
//   - MemorySlot: Process-local slot for tests and --ephemeral runs
//   - History: Save, Load, Clear and Stats over a Slot
//   - Watcher: fsnotify reload of a FileSlot changed by another process
//
// # Usage
//
//	slot, err := storage.Open(storage.Options{Driver: "file", Path: dir})
//	hist := storage.NewHistory(slot)
//	msgs := hist.Load(ctx) // never fails; empty on absent or corrupt data
//	hist.Save(ctx, msgs)
//
// # Error Handling
//
// Load never returns an error: a missing slot yields an empty history and a
// corrupt one is logged and treated as empty. Save and Clear return errors
// so callers can log them, but no caller treats them as fatal.
package storage
