// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// AttachedFile is a file the user picked for the next message.
// It lives only in the input stage and is never persisted.
type AttachedFile struct {
	ID   string // unique per attachment
	Name string
	Size int64  // bytes
	Type string // MIME type, may be empty
	Path string // handle used to read the contents at send time
}

// PreparedFile is the wire form of an attachment sent to the backend.
type PreparedFile struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64, no data-URL prefix
	Type string `json:"type"`
	Size int64  `json:"size"`
}
