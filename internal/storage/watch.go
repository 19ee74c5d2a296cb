// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

// ErrWatchUnsupported is returned when the slot has no file to watch.
var ErrWatchUnsupported = &SlotError{Message: "slot does not support watching"}

// DefaultWatchDebounce coalesces the burst of events an atomic rename produces.
const DefaultWatchDebounce = 150 * time.Millisecond

// Watcher reloads the history when another process rewrites the file slot.
type Watcher struct {
	hist     *History
	path     string
	debounce time.Duration
	onChange func([]model.Message)

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching h's file slot. onChange receives the reloaded history
// after writes made by other processes; this process's own saves and clears
// are ignored. The watcher stops when ctx is cancelled or Close is called.
func (h *History) Watch(ctx context.Context, debounce time.Duration, onChange func([]model.Message)) (*Watcher, error) {
	fs, ok := h.slot.(*FileSlot)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	// The file is replaced by rename, so watch the directory rather than the inode.
	dir := filepath.Dir(fs.Path())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		hist:     h,
		path:     filepath.Clean(fs.Path()),
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.schedule(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("storage: watch %s: %v", w.path, err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
}

func (w *Watcher) reload(ctx context.Context) {
	select {
	case <-w.done:
		return
	default:
	}

	data, err := w.hist.slot.Get(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("storage: reload %s: %v", w.path, err)
		return
	}
	if !w.hist.changed(data) {
		return
	}

	msgs := []model.Message{}
	if data != nil {
		if msgs, err = Decode(data); err != nil {
			log.Printf("storage: ignoring corrupt external write to %s: %v", w.path, err)
			return
		}
	}
	w.onChange(msgs)
}
