// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "Bot"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot || r == RoleSystem
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// ErrorPrefix is prepended to every synthetic error message shown to the user.
const ErrorPrefix = "❌ Error: "

// Message is a single chat entry. The JSON shape is the persisted history format.
type Message struct {
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds

	// ID targets streaming updates. Only placeholders carry one.
	ID *int64 `json:"id,omitempty"`

	// IsStreaming is true only on the in-flight bot placeholder.
	IsStreaming bool `json:"isStreaming,omitempty"`
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, text string) Message {
	return Message{
		Role:      role,
		Text:      text,
		Timestamp: NowMillis(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, text)
}

// NewBotMessage creates a completed bot message.
func NewBotMessage(text string) Message {
	return NewMessage(RoleBot, text)
}

// NewPlaceholder creates an empty streaming bot message tagged with id.
func NewPlaceholder(id int64) Message {
	msg := NewMessage(RoleBot, "")
	msg.ID = &id
	msg.IsStreaming = true
	return msg
}

// NewSystemError renders err as the system message shown after a failed exchange.
func NewSystemError(err error) Message {
	return NewMessage(RoleSystem, ErrorPrefix+err.Error())
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasID reports whether the message carries the given streaming id.
func (m Message) HasID(id int64) bool {
	return m.ID != nil && *m.ID == id
}

// Time converts the epoch-ms timestamp to a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// FormatTime returns the short clock time shown beside a message.
func (m Message) FormatTime() string {
	if m.Timestamp == 0 {
		return ""
	}
	return m.Time().Format("15:04")
}

// IsError reports whether the message is a synthetic error notice.
func (m Message) IsError() bool {
	return m.Role == RoleSystem && len(m.Text) >= len(ErrorPrefix) && m.Text[:len(ErrorPrefix)] == ErrorPrefix
}

// Clone returns a copy that does not share the ID pointer.
func (m Message) Clone() Message {
	if m.ID != nil {
		id := *m.ID
		m.ID = &id
	}
	return m
}

// CloneMessages deep-copies a message slice.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// Equal compares two messages field by field, following the ID pointer.
func (m Message) Equal(o Message) bool {
	if m.Role != o.Role || m.Text != o.Text || m.Timestamp != o.Timestamp || m.IsStreaming != o.IsStreaming {
		return false
	}
	if (m.ID == nil) != (o.ID == nil) {
		return false
	}
	return m.ID == nil || *m.ID == *o.ID
}
