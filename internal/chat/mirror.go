// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/storage"
	"github.com/jeranaias/chatbot-tui/internal/store"
)

// persistTimeout bounds one history write.
const persistTimeout = 5 * time.Second

// Mirror writes the conversation to storage after every store event.
//
// Failures are logged and otherwise ignored; the in-memory conversation stays
// authoritative. Replaced events are not written back because they already
// came from storage.
type Mirror struct {
	history *storage.History
	limiter *rate.Limiter
}

// NewMirror creates a mirror. A positive interval throttles delta-driven
// writes; every other event is written immediately, so the final text of a
// reply is always persisted.
func NewMirror(history *storage.History, interval time.Duration) *Mirror {
	m := &Mirror{history: history}
	if interval > 0 {
		m.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return m
}

// OnEvent implements store.Listener.
func (m *Mirror) OnEvent(ev store.Event, msgs []model.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	switch ev.Kind {
	case store.EventReplaced:
		return
	case store.EventCleared:
		if err := m.history.Clear(ctx); err != nil {
			log.Printf("chat: clear saved history: %v", err)
		}
		return
	case store.EventDelta:
		if m.limiter != nil && !m.limiter.Allow() {
			return
		}
	}

	if err := m.history.Save(ctx, msgs); err != nil {
		log.Printf("chat: save history: %v", err)
	}
}
