// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach turns files picked by the user into chat attachments.
//
// Open inspects a path and returns a model.AttachedFile without reading the
// contents. Prepare reads and base64-encodes the files right before a
// request is sent. Describe renders the note appended to the user's message
// so the transcript records what was sent.
package attach

import (
	"encoding/base64"
	"fmt"
	"math"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

// DefaultMaxBytes is the per-file limit when none is configured.
const DefaultMaxBytes = 20 * 1024 * 1024

// ErrTooLarge is returned by Open for files above the size limit.
var ErrTooLarge = errors.New("file exceeds attachment size limit")

// Open stats path and builds an attachment record. maxBytes <= 0 disables
// the size check.
func Open(path string, maxBytes int64) (model.AttachedFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.AttachedFile{}, errors.Wrapf(err, "resolve %s", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return model.AttachedFile{}, errors.Wrapf(err, "attach %s", path)
	}
	if info.IsDir() {
		return model.AttachedFile{}, errors.Errorf("attach %s: is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return model.AttachedFile{}, errors.Wrapf(ErrTooLarge, "%s is %s, limit %s",
			info.Name(), FormatSize(info.Size()), FormatSize(maxBytes))
	}

	return model.AttachedFile{
		ID:   uuid.NewString(),
		Name: info.Name(),
		Size: info.Size(),
		Type: detectType(abs),
		Path: abs,
	}, nil
}

// detectType prefers the extension table and falls back to content sniffing.
func detectType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
		return t
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	if n == 0 {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if err != nil {
		return ""
	}
	return mediaType
}

// Prepare reads every file and encodes it for transmission.
func Prepare(files []model.AttachedFile) ([]model.PreparedFile, error) {
	out := make([]model.PreparedFile, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "read attachment %s", f.Name)
		}
		out = append(out, model.PreparedFile{
			Name: f.Name,
			Data: base64.StdEncoding.EncodeToString(data),
			Type: f.Type,
			Size: int64(len(data)),
		})
	}
	return out, nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// Label renders one attachment as "`name` (EXT, N KB)". EXT is the upper-cased
// MIME subtype, or "file" when the type is unknown.
func Label(f model.AttachedFile) string {
	ext := "file"
	if f.Type != "" {
		parts := strings.Split(strings.ToUpper(f.Type), "/")
		ext = parts[len(parts)-1]
	}
	kb := int64(math.Round(float64(f.Size) / 1024))
	return fmt.Sprintf("`%s` (%s, %d KB)", f.Name, ext, kb)
}

// Describe returns the transcript text for a user message: text followed by
// an "[Attached files: ...]" note when files are present.
func Describe(text string, files []model.AttachedFile) string {
	if len(files) == 0 {
		return text
	}
	labels := make([]string, len(files))
	for i, f := range files {
		labels[i] = Label(f)
	}
	note := "[Attached files: " + strings.Join(labels, ", ") + "]"
	if text == "" {
		return note
	}
	return text + " " + note
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders n with up to two decimals: "0 Bytes", "1.5 KB", "2 MB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	return humanize.CommafWithDigits(v, 2) + " " + sizeUnits[i]
}
