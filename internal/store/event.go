// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

// EventKind identifies what an Event does to the conversation.
type EventKind int

const (
	// EventAppended adds a completed message.
	EventAppended EventKind = iota
	// EventStreamStarted adds a streaming placeholder.
	EventStreamStarted
	// EventDelta appends text to the streaming placeholder.
	EventDelta
	// EventFinalized clears the streaming flag, optionally committing text.
	EventFinalized
	// EventCleared empties the conversation.
	EventCleared
	// EventReplaced swaps in a whole sequence (history load, external change).
	EventReplaced
	// EventDiscarded drops a streaming placeholder that never received text.
	// A placeholder that did receive text is finalized instead.
	EventDiscarded
)

// String returns the event name used in logs.
func (k EventKind) String() string {
	switch k {
	case EventAppended:
		return "appended"
	case EventStreamStarted:
		return "stream_started"
	case EventDelta:
		return "delta"
	case EventFinalized:
		return "finalized"
	case EventCleared:
		return "cleared"
	case EventReplaced:
		return "replaced"
	case EventDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Event is one entry of the conversation log.
type Event struct {
	ID   ulid.ULID // assigned by Store.Dispatch, sortable by time
	At   time.Time
	Kind EventKind

	// Message is set for EventAppended and EventStreamStarted.
	Message model.Message

	// Target is the placeholder id for EventDelta, EventFinalized and
	// EventDiscarded.
	Target int64

	// Delta is the text appended by EventDelta.
	Delta string

	// Text, when non-nil on EventFinalized, replaces the placeholder text.
	Text *string

	// Messages is the new sequence for EventReplaced.
	Messages []model.Message
}

// Appended builds an EventAppended.
func Appended(msg model.Message) Event {
	return Event{Kind: EventAppended, Message: msg}
}

// StreamStarted builds an EventStreamStarted for placeholder.
func StreamStarted(placeholder model.Message) Event {
	return Event{Kind: EventStreamStarted, Message: placeholder}
}

// Delta builds an EventDelta.
func Delta(target int64, text string) Event {
	return Event{Kind: EventDelta, Target: target, Delta: text}
}

// Finalized builds an EventFinalized. A nil text keeps the accumulated text.
func Finalized(target int64, text *string) Event {
	return Event{Kind: EventFinalized, Target: target, Text: text}
}

// Discarded builds an EventDiscarded.
func Discarded(target int64) Event {
	return Event{Kind: EventDiscarded, Target: target}
}

// Cleared builds an EventCleared.
func Cleared() Event {
	return Event{Kind: EventCleared}
}

// Replaced builds an EventReplaced.
func Replaced(msgs []model.Message) Event {
	return Event{Kind: EventReplaced, Messages: msgs}
}
