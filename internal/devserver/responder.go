// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Prompt is a decoded chat request.
type Prompt struct {
	Message string
	Files   []File
}

// File is one attachment after base64 decoding. Err is set when the data
// could not be decoded; the request still proceeds.
type File struct {
	Name string
	Type string
	Data []byte
	Err  error
}

// Responder produces the reply for a prompt.
type Responder interface {
	Respond(ctx context.Context, p Prompt) (string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, p Prompt) (string, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// EchoResponder repeats the message back.
type EchoResponder struct{}

// Respond implements Responder.
func (EchoResponder) Respond(_ context.Context, p Prompt) (string, error) {
	var sb strings.Builder
	if p.Message != "" {
		sb.WriteString("You said: ")
		sb.WriteString(p.Message)
	}
	for _, f := range p.Files {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if f.Err != nil {
			fmt.Fprintf(&sb, "Error processing file %s: %v", f.Name, f.Err)
			continue
		}
		typ := f.Type
		if typ == "" {
			typ = "unknown type"
		}
		fmt.Fprintf(&sb, "Received %s (%s, %s).", f.Name, typ, humanize.Bytes(uint64(len(f.Data))))
	}
	return sb.String(), nil
}
