// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbot-tui/internal/backend"
	chatsvc "github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/model"
)

// =============================================================================
// TEA MESSAGES
// =============================================================================

// transcriptMsg signals that the session's messages changed.
type transcriptMsg struct{}

// reloadedMsg signals that the history was replaced from storage by another
// process.
type reloadedMsg struct{}

// exchangeDoneMsg is returned when Session.Send finishes.
type exchangeDoneMsg struct {
	err error
}

// clearDoneMsg is returned when Session.Clear finishes.
type clearDoneMsg struct {
	err error
}

// statsMsg carries the result of /stats.
type statsMsg struct {
	stats model.ChatStats
}

// healthMsg carries a backend health probe result.
type healthMsg struct {
	health backend.Health
	err    error
}

// =============================================================================
// COMMANDS
// =============================================================================

func sendCmd(ctx context.Context, s *chatsvc.Session, text string, files []model.AttachedFile, streaming bool) tea.Cmd {
	return func() tea.Msg {
		return exchangeDoneMsg{err: s.Send(ctx, text, files, streaming)}
	}
}

func clearCmd(ctx context.Context, s *chatsvc.Session) tea.Cmd {
	return func() tea.Msg {
		return clearDoneMsg{err: s.Clear(ctx)}
	}
}

func statsCmd(ctx context.Context, s *chatsvc.Session) tea.Cmd {
	return func() tea.Msg {
		return statsMsg{stats: s.Stats(ctx)}
	}
}

func healthCmd(ctx context.Context, hc HealthChecker) tea.Cmd {
	if hc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		h, err := hc.Health(ctx)
		return healthMsg{health: h, err: err}
	}
}
