// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/chatbot-tui/internal/util"
)

// FileSlot keeps the value in <dir>/<key>.json.
type FileSlot struct {
	BaseDir string
	Key     string
}

// NewFileSlot creates a file slot. The directory is created on first Put.
func NewFileSlot(dir, key string) *FileSlot {
	if key == "" {
		key = DefaultKey
	}
	return &FileSlot{BaseDir: dir, Key: key}
}

// Path returns the backing file path.
func (s *FileSlot) Path() string {
	return filepath.Join(s.BaseDir, s.Key+".json")
}

// Get reads the file.
func (s *FileSlot) Get(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", s.Path(), err)
	}
	return data, nil
}

// Put writes the file atomically.
func (s *FileSlot) Put(ctx context.Context, data []byte) error {
	if err := util.AtomicWriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.Path(), err)
	}
	return nil
}

// Delete removes the file if present.
func (s *FileSlot) Delete(ctx context.Context) error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.Path(), err)
	}
	return nil
}

// Describe implements Slot.
func (s *FileSlot) Describe() string {
	return "file:" + s.Path()
}

// Close implements Slot.
func (s *FileSlot) Close() error {
	return nil
}
