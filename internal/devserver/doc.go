// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is a small chat backend for local development and
// integration tests.
//
// It speaks the same protocol as the production backend:
//
//	POST /chat    {"message", "attached_files", "streaming"}
//	              streaming: data: {"content","type":"chunk"} ... data: {"type":"end"}
//	              single-shot: {"response"}
//	GET  /health  {"status":"healthy", ...}
//	GET  /        plain-text banner
//
// Replies come from a Responder. The default EchoResponder repeats the
// message and summarizes any attached files.
//
// CORS headers are sent for every origin unless WithCORS says otherwise, so
// a browser front end on another port can use the server too.
package devserver
