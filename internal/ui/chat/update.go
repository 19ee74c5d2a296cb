// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	chatsvc "github.com/jeranaias/chatbot-tui/internal/chat"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case transcriptMsg:
		m.syncMessages()
		return m, nil

	case reloadedMsg:
		m.setNotice("History changed by another process; reloaded")
		m.syncMessages()
		return m, nil

	case exchangeDoneMsg:
		return m.handleExchangeDone(msg)

	case clearDoneMsg:
		if msg.err != nil {
			m.setError("Clear failed: " + msg.err.Error())
		} else {
			m.setNotice("History cleared")
		}
		m.syncMessages()
		return m, nil

	case statsMsg:
		m.stats = msg.stats
		m.overlay = overlayStats
		m.layout()
		return m, nil

	case healthMsg:
		m.health = healthState{checked: true, err: msg.err}
		if msg.err == nil {
			m.health.ok = true
			m.health.status = msg.health.Status
			m.health.latency = msg.health.Latency
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// syncMessages pulls the session's messages and re-renders.
func (m *Model) syncMessages() {
	m.messages = m.session.Messages()
	if !m.ready {
		return
	}
	m.layout()
	m.refresh()
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancelMgr.cancel()
		return m, tea.Quit
	}

	if m.confirmClear {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirmClear = false
			return m, clearCmd(m.ctx, m.session)
		case key.Matches(msg, m.keys.Deny):
			m.confirmClear = false
			m.setNotice("History kept")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.loading {
			if m.cancelMgr.cancel() {
				m.setNotice("Stopping reply...")
			}
			return m, nil
		}
		if m.overlay != overlayNone {
			m.overlay = overlayNone
			m.layout()
			return m, nil
		}
		m.notice = ""
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.layout()
	return m, cmd
}

// submit sends the input, or runs it as a slash command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		cmd := m.runCommand(text)
		m.layout()
		return m, cmd
	}
	if m.loading {
		m.setError(chatsvc.ErrBusy.Error())
		return m, nil
	}
	if text == "" && len(m.attachments) == 0 {
		return m, nil
	}

	files := m.attachments
	m.attachments = nil
	m.input.Reset()
	m.overlay = overlayNone
	m.notice = ""
	m.loading = true
	m.startedAt = time.Now()

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelMgr.set(cancel)
	m.layout()

	return m, tea.Batch(
		sendCmd(ctx, m.session, text, files, m.streaming),
		m.spinner.Tick,
	)
}

func (m Model) handleExchangeDone(msg exchangeDoneMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.cancelMgr.cancel()

	var cmd tea.Cmd
	switch err := msg.err; {
	case err == nil:
	case errors.Is(err, chatsvc.ErrBusy):
		m.setError(err.Error())
	case errors.Is(err, context.Canceled):
		m.setNotice("Reply stopped")
	default:
		m.setError("Reply failed")
		cmd = healthCmd(m.ctx, m.opts.Health)
	}
	m.syncMessages()
	return m, cmd
}
