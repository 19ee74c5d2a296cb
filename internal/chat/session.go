// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jeranaias/chatbot-tui/internal/attach"
	"github.com/jeranaias/chatbot-tui/internal/backend"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/storage"
	"github.com/jeranaias/chatbot-tui/internal/store"
	"github.com/jeranaias/chatbot-tui/internal/stream"
)

// Session errors.
var (
	ErrBusy         = errors.New("a reply is still in progress")
	ErrEmptyMessage = errors.New("nothing to send: message is empty and no files are attached")
)

// Backend is the part of backend.Client used by a Session.
type Backend interface {
	OpenStream(ctx context.Context, req backend.ChatRequest) (*backend.Stream, error)
	Complete(ctx context.Context, req backend.ChatRequest) (string, error)
}

// Option configures a Session.
type Option func(*Session)

// WithSaveInterval throttles history writes caused by streaming deltas to
// one per d. Other changes are always written immediately.
func WithSaveInterval(d time.Duration) Option {
	return func(s *Session) { s.saveInterval = d }
}

// Session is one conversation bound to a backend and an optional history.
type Session struct {
	store   *store.Store
	backend Backend
	history *storage.History

	saveInterval time.Duration
	mirror       *Mirror
	unsubscribe  func()

	busy atomic.Bool
}

// NewSession creates a session. history may be nil for an unpersisted chat.
func NewSession(st *store.Store, be Backend, history *storage.History, opts ...Option) *Session {
	s := &Session{store: st, backend: be, history: history}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying message store.
func (s *Session) Store() *store.Store {
	return s.store
}

// History returns the persistence adapter, or nil.
func (s *Session) History() *storage.History {
	return s.history
}

// Start loads the saved history into the store and begins mirroring changes
// back to storage. A placeholder left streaming by an interrupted run is
// finalized with whatever text it had.
func (s *Session) Start(ctx context.Context) {
	if s.history == nil {
		return
	}
	s.store.Replace(s.history.Load(ctx))

	s.mirror = NewMirror(s.history, s.saveInterval)
	s.unsubscribe = s.store.Subscribe(s.mirror.OnEvent)

	if stale, ok := s.store.Streaming(); ok && stale.ID != nil {
		log.Printf("chat: finalizing placeholder %d left over from a previous run", *stale.ID)
		s.store.Finalize(*stale.ID, nil)
	}
}

// Close stops mirroring.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Busy reports whether an exchange is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Messages returns the current conversation.
func (s *Session) Messages() []model.Message {
	return s.store.Messages()
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one exchange. The returned error has already been recorded in
// the conversation as a system message, except ErrBusy and ErrEmptyMessage,
// which leave the conversation untouched.
func (s *Session) Send(ctx context.Context, text string, files []model.AttachedFile, streaming bool) error {
	if strings.TrimSpace(text) == "" && len(files) == 0 {
		return ErrEmptyMessage
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.store.Append(model.NewUserMessage(attach.Describe(text, files)))

	err := s.exchange(ctx, text, files, streaming)
	if err != nil {
		log.Printf("chat: exchange failed: %v", err)
		s.store.Append(model.NewSystemError(err))
	}
	return err
}

func (s *Session) exchange(ctx context.Context, text string, files []model.AttachedFile, streaming bool) error {
	prepared, err := attach.Prepare(files)
	if err != nil {
		return err
	}
	req := backend.ChatRequest{Message: text, AttachedFiles: prepared, Streaming: streaming}

	if !streaming {
		reply, err := s.backend.Complete(ctx, req)
		if err != nil {
			return err
		}
		s.store.Append(model.NewBotMessage(reply))
		return nil
	}

	id := s.store.BeginStream()
	// The placeholder never outlives the exchange. On failure it keeps the
	// partial text that already arrived, or goes away if nothing did.
	var final *string
	defer func() {
		if final == nil {
			s.store.Discard(id)
			return
		}
		s.store.Finalize(id, final)
	}()

	body, err := s.backend.OpenStream(ctx, req)
	if err != nil {
		return err
	}
	defer body.Body.Close()

	res, err := stream.Consume(ctx, body.Body, body.Charset, func(delta, _ string) {
		s.store.AppendDelta(id, delta)
	})
	if res.Skipped > 0 {
		log.Printf("chat: skipped %d malformed frame(s)", res.Skipped)
	}
	if err != nil {
		return err
	}
	final = &res.Text
	return nil
}

// =============================================================================
// HISTORY OPERATIONS
// =============================================================================

// Clear empties the conversation and removes the saved history.
func (s *Session) Clear(ctx context.Context) error {
	if s.Busy() {
		return ErrBusy
	}
	s.store.Clear()
	if s.history != nil && s.mirror == nil {
		return s.history.Clear(ctx)
	}
	return nil
}

// Stats reports counts for the saved history, or for the in-memory
// conversation when nothing is persisted.
func (s *Session) Stats(ctx context.Context) model.ChatStats {
	if s.history != nil {
		return s.history.Stats(ctx)
	}
	return model.ComputeStats(s.store.Messages())
}

// Reload replaces the conversation with msgs, typically after another
// process changed the saved history. It is ignored while an exchange runs.
func (s *Session) Reload(msgs []model.Message) bool {
	if s.Busy() {
		log.Printf("chat: ignoring external history change during an exchange")
		return false
	}
	s.store.Replace(msgs)
	return true
}

// Watch reloads the conversation whenever the saved history is changed by
// another process. onReload is called after each applied reload.
func (s *Session) Watch(ctx context.Context, onReload func()) (*storage.Watcher, error) {
	if s.history == nil {
		return nil, storage.ErrWatchUnsupported
	}
	return s.history.Watch(ctx, storage.DefaultWatchDebounce, func(msgs []model.Message) {
		if s.Reload(msgs) && onReload != nil {
			onReload()
		}
	})
}
