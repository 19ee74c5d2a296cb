// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

// DefaultCompactThreshold bounds the log before it is folded into a snapshot.
// Streaming adds one event per frame, so long sessions would otherwise grow
// without limit.
const DefaultCompactThreshold = 10000

// Listener observes dispatched events. msgs is the sequence after the event
// was applied and must not be modified. Listeners run on the dispatching
// goroutine in dispatch order and must not call back into the Store.
type Listener func(ev Event, msgs []model.Message)

// Store is the conversation log and its reduced view.
type Store struct {
	// dispatchMu serializes Dispatch so listeners see events in log order.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	events    []Event
	msgs      []model.Message
	lastID    int64
	entropy   io.Reader
	listeners map[int]Listener
	nextSub   int
	compactAt int
	now       func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		msgs:      []model.Message{},
		entropy:   ulid.Monotonic(rand.Reader, 0),
		listeners: make(map[int]Listener),
		compactAt: DefaultCompactThreshold,
		now:       time.Now,
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Dispatch records ev, applies it and notifies listeners. It returns the
// recorded event with its ID and timestamp filled in.
func (s *Store) Dispatch(ev Event) Event {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	ev.At = s.now()
	ev.ID = ulid.MustNew(ulid.Timestamp(ev.At), s.entropy)
	s.events = append(s.events, ev)
	s.msgs = Reduce(s.msgs, ev)
	s.trackIDsLocked(ev)
	if s.compactAt > 0 && len(s.events) > s.compactAt {
		s.compactLocked()
	}
	msgs := s.msgs
	listeners := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextSub; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(ev, msgs)
	}
	return ev
}

// trackIDsLocked remembers the largest placeholder id seen so new ids never
// collide with loaded ones.
func (s *Store) trackIDsLocked(ev Event) {
	var msgs []model.Message
	switch ev.Kind {
	case EventStreamStarted, EventAppended:
		msgs = []model.Message{ev.Message}
	case EventReplaced:
		msgs = ev.Messages
	}
	for _, m := range msgs {
		if m.ID != nil && *m.ID > s.lastID {
			s.lastID = *m.ID
		}
	}
}

// compactLocked folds the log into a single snapshot event.
func (s *Store) compactLocked() {
	last := s.events[len(s.events)-1]
	snapshot := Replaced(model.CloneMessages(s.msgs))
	snapshot.ID = last.ID
	snapshot.At = last.At
	s.events = []Event{snapshot}
}

// =============================================================================
// CONVENIENCE OPERATIONS
// =============================================================================

// Append adds a completed message.
func (s *Store) Append(msg model.Message) {
	s.Dispatch(Appended(msg))
}

// BeginStream appends an empty streaming bot placeholder and returns its id.
// Ids are epoch milliseconds, bumped when two placeholders share a millisecond.
func (s *Store) BeginStream() int64 {
	s.mu.Lock()
	id := model.NowMillis()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	s.mu.Unlock()

	s.Dispatch(StreamStarted(model.NewPlaceholder(id)))
	return id
}

// AppendDelta appends text to placeholder id.
func (s *Store) AppendDelta(id int64, delta string) {
	s.Dispatch(Delta(id, delta))
}

// Finalize ends streaming on placeholder id. A nil text keeps what was
// accumulated through AppendDelta.
func (s *Store) Finalize(id int64, text *string) {
	s.Dispatch(Finalized(id, text))
}

// Discard removes placeholder id if it is still empty, otherwise finalizes it
// with the text it has.
func (s *Store) Discard(id int64) {
	s.Dispatch(Discarded(id))
}

// Clear empties the conversation.
func (s *Store) Clear() {
	s.Dispatch(Cleared())
}

// Replace swaps in msgs wholesale.
func (s *Store) Replace(msgs []model.Message) {
	s.Dispatch(Replaced(msgs))
}

// =============================================================================
// QUERIES
// =============================================================================

// Messages returns a copy of the current sequence.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := model.CloneMessages(s.msgs)
	if out == nil {
		out = []model.Message{}
	}
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// Events returns a copy of the log.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}

// Streaming returns the in-flight placeholder, if any.
func (s *Store) Streaming() (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.msgs) - 1; i >= 0; i-- {
		if s.msgs[i].IsStreaming {
			return s.msgs[i].Clone(), true
		}
	}
	return model.Message{}, false
}
