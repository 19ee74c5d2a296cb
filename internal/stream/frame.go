// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"encoding/json"
	"fmt"
)

// FrameKind classifies a parsed data line.
type FrameKind int

const (
	// FrameIgnored is valid JSON that carries nothing actionable,
	// e.g. a chunk with empty content.
	FrameIgnored FrameKind = iota
	FrameContent
	FrameEnd
	FrameErrorKind
	FrameMalformed
)

// String returns the kind name used in logs.
func (k FrameKind) String() string {
	switch k {
	case FrameContent:
		return "content"
	case FrameEnd:
		return "end"
	case FrameErrorKind:
		return "error"
	case FrameMalformed:
		return "malformed"
	default:
		return "ignored"
	}
}

// Frame is one decoded data line.
type Frame struct {
	Kind    FrameKind
	Content string
	Error   string
	Type    string

	// ParseErr is set for FrameMalformed.
	ParseErr error
}

// wireFrame mirrors the JSON the backend sends.
type wireFrame struct {
	Content string `json:"content"`
	Error   string `json:"error"`
	Type    string `json:"type"`
}

// Frame type values sent by the backend.
const (
	TypeChunk = "chunk"
	TypeEnd   = "end"
	TypeError = "error"
)

// ParseFrame decodes the JSON payload that followed "data: ".
//
// Precedence matches the backend contract: a type of "end" wins, then a
// non-empty error, then non-empty content. Anything else is ignored.
func ParseFrame(payload string) Frame {
	var w wireFrame
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return Frame{Kind: FrameMalformed, ParseErr: fmt.Errorf("parse frame %q: %w", clip(payload, 64), err)}
	}

	f := Frame{Content: w.Content, Error: w.Error, Type: w.Type}
	switch {
	case w.Type == TypeEnd:
		f.Kind = FrameEnd
	case w.Error != "":
		f.Kind = FrameErrorKind
	case w.Content != "":
		f.Kind = FrameContent
	default:
		f.Kind = FrameIgnored
	}
	return f
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
