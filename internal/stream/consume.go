// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"io"
	"log"
)

// DeltaFunc receives each content delta and the accumulated text so far.
type DeltaFunc func(delta, accumulated string)

// Result summarizes a consumed stream.
type Result struct {
	Text    string
	State   State
	Frames  int
	Skipped int
}

// Consume reads body until an end frame, an error frame, EOF or a transport
// failure. onDelta is called synchronously for every content frame.
//
// On success the returned Result is in StateFinalized. On failure the error
// is a *FrameError (backend-reported) or a *StreamError (transport or
// cancellation), and Result.Text holds the partial text.
func Consume(ctx context.Context, body io.Reader, charset string, onDelta DeltaFunc) (Result, error) {
	m := NewMachine()
	if _, err := m.Open(); err != nil {
		return Result{}, err
	}

	dec := NewDecoder(body, charset)
	for !m.State().Terminal() {
		if err := ctx.Err(); err != nil {
			m.Fail(err)
			break
		}

		payload, err := dec.Next()
		switch {
		case err == nil:
		case errors.Is(err, ErrLineTooLong):
			log.Printf("stream: skipping frame: %v", err)
			m.Apply(Frame{Kind: FrameMalformed, ParseErr: err})
			continue
		case errors.Is(err, io.EOF):
			m.EOF()
			continue
		default:
			// A cancelled request surfaces as a read error; report the cause.
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			m.Fail(err)
			continue
		}

		frame := ParseFrame(payload)
		t, _ := m.Apply(frame)
		switch t.Effect {
		case EffectSkip:
			log.Printf("stream: skipping malformed frame: %v", frame.ParseErr)
		case EffectDelta:
			if onDelta != nil {
				onDelta(t.Delta, m.Text())
			}
		}
	}

	res := Result{Text: m.Text(), State: m.State(), Frames: m.Frames(), Skipped: m.Skipped()}
	if m.State() == StateErrored {
		return res, m.Err()
	}
	return res, nil
}
