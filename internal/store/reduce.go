// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/jeranaias/chatbot-tui/internal/model"
)

// Reduce applies ev to msgs and returns the resulting sequence. msgs is never
// modified; unchanged events may return it as-is.
func Reduce(msgs []model.Message, ev Event) []model.Message {
	switch ev.Kind {
	case EventAppended:
		msg := ev.Message.Clone()
		msg.IsStreaming = false
		return appendCopy(msgs, msg)

	case EventStreamStarted:
		out := finalizeAll(msgs)
		msg := ev.Message.Clone()
		msg.IsStreaming = true
		return append(out, msg)

	case EventDelta:
		i := streamingIndex(msgs, ev.Target)
		if i < 0 || ev.Delta == "" {
			return msgs
		}
		out := copyMessages(msgs, 0)
		out[i].Text += ev.Delta
		return out

	case EventFinalized:
		i := streamingIndex(msgs, ev.Target)
		if i < 0 {
			return msgs
		}
		out := copyMessages(msgs, 0)
		out[i].IsStreaming = false
		if ev.Text != nil {
			out[i].Text = *ev.Text
		}
		return out

	case EventDiscarded:
		i := streamingIndex(msgs, ev.Target)
		if i < 0 {
			return msgs
		}
		if msgs[i].Text != "" {
			out := copyMessages(msgs, 0)
			out[i].IsStreaming = false
			return out
		}
		out := make([]model.Message, 0, len(msgs)-1)
		out = append(out, msgs[:i]...)
		return append(out, msgs[i+1:]...)

	case EventCleared:
		return []model.Message{}

	case EventReplaced:
		out := model.CloneMessages(ev.Messages)
		if out == nil {
			out = []model.Message{}
		}
		// Keep only the newest streaming flag.
		seen := false
		for i := len(out) - 1; i >= 0; i-- {
			if out[i].IsStreaming {
				if seen {
					out[i].IsStreaming = false
				}
				seen = true
			}
		}
		return out
	}
	return msgs
}

// ReduceAll folds events over an empty conversation.
func ReduceAll(events []Event) []model.Message {
	msgs := []model.Message{}
	for _, ev := range events {
		msgs = Reduce(msgs, ev)
	}
	return msgs
}

func streamingIndex(msgs []model.Message, id int64) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsStreaming && msgs[i].HasID(id) {
			return i
		}
	}
	return -1
}

// finalizeAll returns a copy with every streaming flag cleared and one spare
// slot of capacity for the caller's append.
func finalizeAll(msgs []model.Message) []model.Message {
	out := copyMessages(msgs, 1)
	for i := range out {
		out[i].IsStreaming = false
	}
	return out
}

func appendCopy(msgs []model.Message, msg model.Message) []model.Message {
	out := copyMessages(msgs, 1)
	return append(out, msg)
}

func copyMessages(msgs []model.Message, extra int) []model.Message {
	out := make([]model.Message, len(msgs), len(msgs)+extra)
	copy(out, msgs)
	return out
}
