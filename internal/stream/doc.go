// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream consumes the chat backend's server-sent event body.
//
// The body is a sequence of newline-delimited lines. Lines that begin with
// the literal prefix "data: " carry a JSON frame:
//
//	data: {"content":"Hi","type":"chunk"}
//	data: {"type":"end"}
//	data: {"error":"upstream failed","type":"error"}
//
// Consume reads the body incrementally, classifies every frame and drives a
// Machine through its states. Each content frame is reported to the caller
// as soon as it is parsed, so the UI can render partial replies.
//
// # States
//
//	idle --Open--> awaiting_first_byte --content--> accumulating
//	awaiting_first_byte, accumulating --end|EOF--> finalized
//	awaiting_first_byte, accumulating --error frame|transport error--> errored
//	awaiting_first_byte, accumulating --malformed|ignored--> (unchanged)
//
// Malformed frames are logged and skipped; they never end the stream.
package stream
