// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"fmt"
	"log"
	"strings"
)

// =============================================================================
// STATES
// =============================================================================

// State is the consumer's position in one streamed exchange.
type State int

const (
	StateIdle State = iota
	StateAwaitingFirstByte
	StateAccumulating
	StateFinalized
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstByte:
		return "awaiting_first_byte"
	case StateAccumulating:
		return "accumulating"
	case StateFinalized:
		return "finalized"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further input is accepted.
func (s State) Terminal() bool {
	return s == StateFinalized || s == StateErrored
}

// Effect tells the caller what a transition means for the placeholder message.
type Effect int

const (
	EffectNone     Effect = iota
	EffectDelta           // append Delta to the placeholder
	EffectSkip            // malformed frame dropped
	EffectFinalize        // commit the accumulated text
	EffectError           // exchange failed, see Machine.Err
)

// Transition is the result of feeding one input to the machine.
type Transition struct {
	From, To State
	Effect   Effect
	Delta    string
}

// =============================================================================
// ERRORS
// =============================================================================

// FrameError is a logical error reported by the backend inside the stream.
// Its message is shown to the user verbatim.
type FrameError struct {
	Message string
}

func (e *FrameError) Error() string {
	return e.Message
}

// StreamError represents an error that occurred during streaming,
// preserving any partial content received before the error.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface. The partial text stays on the
// message, so only the cause is reported.
func (e *StreamError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError is returned when input arrives in a state that
// cannot accept it.
type InvalidTransitionError struct {
	State State
	Input string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("stream: %s not allowed in state %s", e.Input, e.State)
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine tracks one streamed response. It is not safe for concurrent use.
type Machine struct {
	state   State
	buf     strings.Builder
	err     error
	frames  int
	skipped int
}

// NewMachine returns a machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Text returns the accumulated buffer.
func (m *Machine) Text() string { return m.buf.String() }

// Err returns the failure that moved the machine to StateErrored.
func (m *Machine) Err() error { return m.err }

// Frames returns the number of frames applied, including skipped ones.
func (m *Machine) Frames() int { return m.frames }

// Skipped returns the number of malformed frames dropped.
func (m *Machine) Skipped() int { return m.skipped }

// Open records that the request was sent and the body is being read.
func (m *Machine) Open() (Transition, error) {
	if m.state != StateIdle {
		return Transition{}, &InvalidTransitionError{State: m.state, Input: "open"}
	}
	return m.move(StateAwaitingFirstByte, EffectNone, ""), nil
}

// Apply feeds one parsed frame.
func (m *Machine) Apply(f Frame) (Transition, error) {
	if !m.reading() {
		return Transition{}, &InvalidTransitionError{State: m.state, Input: f.Kind.String() + " frame"}
	}
	m.frames++

	switch f.Kind {
	case FrameContent:
		m.buf.WriteString(f.Content)
		return m.move(StateAccumulating, EffectDelta, f.Content), nil
	case FrameEnd:
		return m.move(StateFinalized, EffectFinalize, ""), nil
	case FrameErrorKind:
		m.err = &FrameError{Message: f.Error}
		return m.move(StateErrored, EffectError, ""), nil
	case FrameMalformed:
		m.skipped++
		return m.move(m.state, EffectSkip, ""), nil
	default:
		return m.move(m.state, EffectNone, ""), nil
	}
}

// EOF records the end of the body. A stream that ends without an end frame
// still commits whatever arrived.
func (m *Machine) EOF() (Transition, error) {
	if !m.reading() {
		return Transition{}, &InvalidTransitionError{State: m.state, Input: "eof"}
	}
	return m.move(StateFinalized, EffectFinalize, ""), nil
}

// Fail records a transport failure (read error, cancellation).
func (m *Machine) Fail(err error) (Transition, error) {
	if m.state.Terminal() {
		return Transition{}, &InvalidTransitionError{State: m.state, Input: "failure"}
	}
	if m.buf.Len() > 0 {
		log.Printf("stream: interrupted after %d chars: %v", m.buf.Len(), err)
	}
	m.err = &StreamError{Partial: m.buf.String(), Err: err}
	return m.move(StateErrored, EffectError, ""), nil
}

func (m *Machine) reading() bool {
	return m.state == StateAwaitingFirstByte || m.state == StateAccumulating
}

func (m *Machine) move(to State, effect Effect, delta string) Transition {
	t := Transition{From: m.state, To: to, Effect: effect, Delta: delta}
	m.state = to
	return t
}
