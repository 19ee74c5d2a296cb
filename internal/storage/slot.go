// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"strings"
)

// DefaultKey names the slot holding the message history.
const DefaultKey = "chatbot_messages"

// =============================================================================
// SLOT INTERFACE
// =============================================================================

// Slot stores a single opaque value under a fixed key.
type Slot interface {
	// Get returns the stored bytes, or ErrNotFound when the slot is empty.
	Get(ctx context.Context) ([]byte, error)

	// Put replaces the stored bytes. Last write wins.
	Put(ctx context.Context, data []byte) error

	// Delete removes the value. Deleting an empty slot is not an error.
	Delete(ctx context.Context) error

	// Describe returns a short human-readable location, e.g. "file:/path".
	Describe() string

	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// Common storage errors.
var (
	ErrNotFound      = &SlotError{Message: "slot is empty"}
	ErrUnknownDriver = &SlotError{Message: "unknown storage driver"}
)

// SlotError represents a storage error.
type SlotError struct {
	Message string
}

// Error implements the error interface.
func (e *SlotError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing slot errors.
func (e *SlotError) Is(target error) bool {
	t, ok := target.(*SlotError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// FACTORY
// =============================================================================

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a slot backend.
type Options struct {
	Driver   string // file, sqlite, redis or memory
	Path     string // directory for file, database file for sqlite
	RedisURL string // redis://host:port/db
	Key      string // defaults to DefaultKey
}

// Open builds the slot named by opts.Driver.
func Open(ctx context.Context, opts Options) (Slot, error) {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}

	switch strings.ToLower(opts.Driver) {
	case "", DriverFile:
		return NewFileSlot(opts.Path, key), nil
	case DriverSQLite:
		return OpenSQLiteSlot(ctx, opts.Path, key)
	case DriverRedis:
		return OpenRedisSlot(ctx, opts.RedisURL, key)
	case DriverMemory:
		return NewMemorySlot(key), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
