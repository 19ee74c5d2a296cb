// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/storage"
	"github.com/jeranaias/chatbot-tui/internal/store"
)

// Run shows the chat screen until the user quits or ctx is cancelled.
// The session must already be started.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) error {
	if opts.Session == nil {
		return errors.New("ui: no session")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	p := tea.NewProgram(New(ctx, opts), progOpts...)

	// Store listeners run on the goroutine that changed the store and must
	// not block, so changes are coalesced into a one-slot channel and
	// forwarded to the program from here.
	changed := make(chan struct{}, 1)
	unsubscribe := opts.Session.Store().Subscribe(func(store.Event, []model.Message) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				p.Send(transcriptMsg{})
			}
		}
	}()

	if opts.Watch {
		w, err := opts.Session.Watch(ctx, func() { p.Send(reloadedMsg{}) })
		switch {
		case err == nil:
			defer w.Close()
		case errors.Is(err, storage.ErrWatchUnsupported):
			log.Printf("ui: history watch unavailable: %v", err)
		default:
			log.Printf("ui: history watch failed: %v", err)
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
