// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatbot-tui/internal/attach"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/util"
)

// streamCursor is drawn after the text of a streaming placeholder.
const streamCursor = "▌"

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.width < minWidth || m.height < minHeight {
		return fmt.Sprintf("Terminal too small (%dx%d). Need at least %dx%d.", m.width, m.height, minWidth, minHeight)
	}

	var body string
	if m.confirmClear {
		body = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, m.renderClearModal())
	} else {
		body = m.viewport.View()
	}

	parts := []string{m.renderHeader(), body}
	if panel := m.renderOverlay(); panel != "" {
		parts = append(parts, panel)
	}
	if chips := m.renderChips(); chips != "" {
		parts = append(parts, chips)
	}
	parts = append(parts, m.theme.InputContainer.Width(m.width).Render(m.input.View()), m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the viewport to whatever the fixed parts leave over.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.input.SetWidth(max(m.width-4, 10))

	fixed := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.theme.InputContainer.Render(m.input.View())) +
		lipgloss.Height(m.renderStatus())
	if panel := m.renderOverlay(); panel != "" {
		fixed += lipgloss.Height(panel)
	}
	if chips := m.renderChips(); chips != "" {
		fixed += lipgloss.Height(chips)
	}

	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-fixed, 3)
	m.markdown.configure(m.theme.GlamourStyle(), m.bubbleWidth()-4)
}

// refresh re-renders the transcript, following the bottom when the user
// has not scrolled away.
func (m *Model) refresh() {
	follow := m.viewport.AtBottom() || m.viewport.TotalLineCount() == 0
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) bubbleWidth() int {
	w := m.width - 6
	if w > 100 {
		w = 100
	}
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// HEADER AND STATUS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("chatbot")
	sub := m.theme.HeaderSubtitle.Render(util.Truncate(m.opts.BackendURL, 40))

	var health string
	switch {
	case !m.health.checked:
		health = m.theme.Muted.Render("checking backend...")
	case m.health.ok:
		health = m.theme.StatusOK.Render(fmt.Sprintf("● %s %dms", m.health.status, m.health.latency.Milliseconds()))
	default:
		health = m.theme.StatusFail.Render("● offline")
	}

	left := title + " " + sub
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(health) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + health)
}

func (m Model) renderStatus() string {
	var left string
	switch {
	case m.loading:
		elapsed := time.Since(m.startedAt).Truncate(time.Second)
		verb := "Thinking"
		if ph, ok := m.streamingPlaceholder(); ok && ph.Text != "" {
			verb = "Streaming"
		}
		left = m.spinner.View() + " " + verb + "... " + m.theme.Muted.Render(fmt.Sprintf("%s · Esc to stop", elapsed))
	case m.notice != "" && m.noticeIsErr:
		left = m.theme.RenderError(m.notice)
	case m.notice != "":
		left = m.theme.RenderInfo(m.notice)
	default:
		left = m.theme.Muted.Render("Enter send · Alt+Enter newline · /help")
	}

	mode := "stream"
	if !m.streaming {
		mode = "single-shot"
	}
	right := m.theme.Muted.Render(fmt.Sprintf("%s · %d msgs · %s", mode, len(m.messages), m.theme.Name))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) streamingPlaceholder() (model.Message, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].IsStreaming {
			return m.messages[i], true
		}
	}
	return model.Message{}, false
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return m.renderWelcome()
	}
	blocks := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.Message) string {
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName())
	if m.opts.ShowTimestamps {
		if ts := msg.FormatTime(); ts != "" {
			label += " " + m.theme.Timestamp.Render(ts)
		}
	}

	width := m.bubbleWidth()
	var body string
	switch msg.Role {
	case model.RoleUser:
		body = m.theme.UserBubble.Width(width).Render(msg.Text)
	case model.RoleBot:
		text := msg.Text
		if msg.IsStreaming {
			// Markdown is rendered once the text is final.
			text += m.theme.Cursor.Render(streamCursor)
		} else {
			text = m.markdown.Render(text)
		}
		body = m.theme.BotBubble.Width(width).Render(text)
	default:
		if msg.IsError() {
			body = m.theme.ErrorBubble.Width(width).Render(msg.Text)
		} else {
			body = m.theme.SystemBubble.Width(width).Render(msg.Text)
		}
	}

	block := label + "\n" + body
	if msg.Role == model.RoleUser {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}
	return block
}

func (m Model) renderWelcome() string {
	keys := []struct{ k, d string }{
		{"Enter", "send a message"},
		{"Alt+Enter", "new line"},
		{"/attach", "add a file"},
		{"Esc", "stop a reply"},
		{"/help", "all commands"},
	}
	var sb strings.Builder
	sb.WriteString(m.theme.WelcomeTitle.Render("Welcome to chatbot"))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.WelcomeInfo.Render("Start a conversation by typing below."))
	sb.WriteString("\n\n")
	for _, kd := range keys {
		sb.WriteString(m.theme.WelcomeKey.Render(util.PadRight(kd.k, 10)))
		sb.WriteString(m.theme.WelcomeInfo.Render(kd.d))
		sb.WriteString("\n")
	}
	if m.opts.StorageInfo != "" {
		sb.WriteString("\n")
		sb.WriteString(m.theme.Muted.Render("History: " + m.opts.StorageInfo))
	}
	box := m.theme.WelcomeBox.Render(strings.TrimRight(sb.String(), "\n"))
	return lipgloss.Place(m.width, max(m.viewport.Height, lipgloss.Height(box)), lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// INPUT STAGE
// =============================================================================

func (m Model) renderChips() string {
	if len(m.attachments) == 0 {
		return ""
	}
	chips := make([]string, 0, len(m.attachments))
	for i, f := range m.attachments {
		chip := m.theme.ChipIndex.Render(fmt.Sprintf("%d", i+1)) + " " +
			util.Truncate(f.Name, 24) + " " + m.theme.Muted.Render(attach.FormatSize(f.Size))
		chips = append(chips, m.theme.Chip.Render(chip))
	}
	return lipgloss.NewStyle().Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderOverlay() string {
	switch m.overlay {
	case overlayHelp:
		return m.renderHelp()
	case overlayStats:
		return m.renderStats()
	default:
		return ""
	}
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	for _, c := range commandList {
		sb.WriteString(m.theme.WelcomeKey.Render(util.PadRight(c.usage, 18)))
		sb.WriteString(m.theme.WelcomeInfo.Render(c.help))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	for _, group := range m.keys.FullHelp() {
		var items []string
		for _, b := range group {
			items = append(items, m.theme.WelcomeKey.Render(b.Help().Key)+" "+m.theme.Muted.Render(b.Help().Desc))
		}
		sb.WriteString(strings.Join(items, "  "))
		sb.WriteString("\n")
	}
	sb.WriteString(m.theme.Muted.Render("Esc to close"))
	return m.theme.SystemBubble.Width(m.bubbleWidth()).Render(sb.String())
}

func (m Model) renderStats() string {
	row := func(label string, v int) string {
		return m.theme.StatsLabel.Render(label) + m.theme.StatsValue.Render(humanize.Comma(int64(v)))
	}
	lines := []string{
		m.theme.ModalTitle.Render("Chat statistics"),
		row("Total messages", m.stats.Total),
		row("Your messages", m.stats.User),
		row("Bot replies", m.stats.Bot),
	}
	if !m.stats.HasHistory {
		lines = append(lines, m.theme.Muted.Render("No saved history"))
	}
	lines = append(lines, m.theme.Muted.Render("Esc to close"))
	return m.theme.SystemBubble.Width(m.bubbleWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) renderClearModal() string {
	content := m.theme.ModalTitle.Render("Clear chat history?") + "\n\n" +
		fmt.Sprintf("This permanently deletes %d message(s).", len(m.messages)) + "\n\n" +
		m.theme.WelcomeKey.Render("y") + " clear   " + m.theme.WelcomeKey.Render("n") + " keep"
	return m.theme.Modal.Render(content)
}
