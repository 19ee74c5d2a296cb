// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestOpen(t *testing.T) {
	path := writeFile(t, "notes.json", []byte(`{"a":1}`))

	f, err := Open(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "notes.json", f.Name)
	assert.Equal(t, int64(7), f.Size)
	assert.Equal(t, "application/json", f.Type)
	assert.NotEmpty(t, f.ID)

	g, err := Open(path, 0)
	require.NoError(t, err)
	assert.NotEqual(t, f.ID, g.ID, "each attachment gets its own id")
}

func TestOpen_SniffsUnknownExtension(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	f, err := Open(writeFile(t, "image.unknownext", png), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.Type)
}

func TestOpen_Rejects(t *testing.T) {
	_, err := Open(t.TempDir(), 0)
	assert.ErrorContains(t, err, "is a directory")

	_, err = Open(filepath.Join(t.TempDir(), "missing.txt"), 0)
	assert.Error(t, err)

	_, err = Open(writeFile(t, "big.txt", make([]byte, 2048)), 1024)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestPrepare(t *testing.T) {
	path := writeFile(t, "hi.txt", []byte("hi"))
	f, err := Open(path, 0)
	require.NoError(t, err)

	prepared, err := Prepare([]model.AttachedFile{f})
	require.NoError(t, err)
	require.Len(t, prepared, 1)

	p := prepared[0]
	assert.Equal(t, "hi.txt", p.Name)
	assert.Equal(t, int64(2), p.Size)
	assert.True(t, strings.HasPrefix(p.Type, "text/plain"))
	decoded, err := base64.StdEncoding.DecodeString(p.Data)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(decoded))
}

func TestDescribe(t *testing.T) {
	files := []model.AttachedFile{
		{Name: "report.pdf", Type: "application/pdf", Size: 12800},
		{Name: "blob", Size: 300},
	}

	assert.Equal(t, "Hello", Describe("Hello", nil))
	assert.Equal(t,
		"Summarize [Attached files: `report.pdf` (PDF, 13 KB), `blob` (file, 0 KB)]",
		Describe("Summarize", files))
	assert.Equal(t, "[Attached files: `report.pdf` (PDF, 13 KB)]", Describe("", files[:1]))
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:               "0 Bytes",
		500:             "500 Bytes",
		1024:            "1 KB",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5 MB",
		3 << 30:         "3 GB",
		2 * (1 << 40):   "2,048 GB",
	}
	for n, want := range tests {
		assert.Equal(t, want, FormatSize(n), "FormatSize(%d)", n)
	}
}
