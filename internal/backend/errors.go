// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "fmt"

// HTTPError reports a non-2xx response status.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// RemoteError carries the "error" field of a backend response.
// The message is shown to the user as-is.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
