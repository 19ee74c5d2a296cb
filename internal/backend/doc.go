// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the chat backend.
//
// The backend exposes a single conversational endpoint:
//
//	POST /chat
//	{"message": "...", "attached_files": [{name, data, type, size}], "streaming": true}
//
// A streaming reply is a text/event-stream body consumed by package stream.
// A single-shot reply is {"response": "..."} or {"error": "..."}.
//
// # Key Types
//
//   - Client: Connection settings and request helpers
//   - ChatRequest: Request body for /chat
//   - Stream: Open streaming response body with its charset
//   - HTTPError: Non-2xx status, rendered as "HTTP error! status: N"
//   - RemoteError: Error reported by the backend in a JSON body
//
// # Usage
//
//	client := backend.NewClient("http://localhost:5050")
//	s, err := client.OpenStream(ctx, backend.ChatRequest{Message: "Hello", Streaming: true})
//	if err != nil {
//	    return err
//	}
//	defer s.Body.Close()
//	res, err := stream.Consume(ctx, s.Body, s.Charset, onDelta)
package backend
