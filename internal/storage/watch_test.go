// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

func TestWatcher_ReloadsExternalWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	local := NewHistory(NewFileSlot(dir, DefaultKey))
	local.Load(ctx)

	var mu sync.Mutex
	var got [][]model.Message
	w, err := local.Watch(ctx, 20*time.Millisecond, func(msgs []model.Message) {
		mu.Lock()
		got = append(got, msgs)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Close()

	// Another process sharing the same file.
	remote := NewHistory(NewFileSlot(dir, DefaultKey))
	want := sampleHistory()[:2]
	require.NoError(t, remote.Save(ctx, want))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && len(got[len(got)-1]) == len(want)
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOwnSaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hist := NewHistory(NewFileSlot(t.TempDir(), DefaultKey))
	var mu sync.Mutex
	calls := 0
	w, err := hist.Watch(ctx, 20*time.Millisecond, func([]model.Message) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, hist.Save(ctx, sampleHistory()))
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestWatch_UnsupportedSlot(t *testing.T) {
	hist := NewHistory(NewMemorySlot(DefaultKey))
	_, err := hist.Watch(context.Background(), 0, func([]model.Message) {})
	assert.ErrorIs(t, err, ErrWatchUnsupported)
}
