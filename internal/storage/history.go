// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

// =============================================================================
// HISTORY ADAPTER
// =============================================================================

// History saves and restores the full message sequence in one Slot.
type History struct {
	slot Slot

	mu   sync.Mutex
	last []byte // bytes most recently read or written by this process
}

// NewHistory wraps slot.
func NewHistory(slot Slot) *History {
	return &History{slot: slot}
}

// Slot returns the underlying slot.
func (h *History) Slot() Slot {
	return h.slot
}

// Save replaces the stored history with msgs.
func (h *History) Save(ctx context.Context, msgs []model.Message) error {
	data, err := Encode(msgs)
	if err != nil {
		return err
	}
	if err := h.slot.Put(ctx, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	h.remember(data)
	return nil
}

// Load returns the stored history. An absent slot yields an empty sequence;
// unreadable or corrupt data is logged and also yields an empty sequence.
func (h *History) Load(ctx context.Context) []model.Message {
	data, err := h.slot.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("storage: load %s failed: %v", h.slot.Describe(), err)
		}
		h.remember(nil)
		return []model.Message{}
	}
	h.remember(data)

	msgs, err := Decode(data)
	if err != nil {
		log.Printf("storage: discarding corrupt history in %s: %v", h.slot.Describe(), err)
		return []model.Message{}
	}
	return msgs
}

// Clear removes the slot.
func (h *History) Clear(ctx context.Context) error {
	if err := h.slot.Delete(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	h.remember(nil)
	return nil
}

// Stats counts the persisted messages. It reads the slot on every call.
func (h *History) Stats(ctx context.Context) model.ChatStats {
	return model.ComputeStats(h.Load(ctx))
}

func (h *History) remember(data []byte) {
	h.mu.Lock()
	h.last = data
	h.mu.Unlock()
}

// changed reports whether data differs from what this process last saw, and
// records it.
func (h *History) changed(data []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if bytes.Equal(h.last, data) {
		return false
	}
	h.last = data
	return true
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode serializes msgs as a JSON array. A nil slice encodes as [].
func Encode(msgs []model.Message) ([]byte, error) {
	if msgs == nil {
		msgs = []model.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}

// Decode parses a stored JSON array of messages.
func Decode(data []byte) ([]model.Message, error) {
	var msgs []model.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}
