// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbot-tui/internal/attach"
	"github.com/jeranaias/chatbot-tui/internal/backend"
	chatsvc "github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/ui/styles"
)

// HealthChecker probes the backend. *backend.Client implements it.
type HealthChecker interface {
	Health(ctx context.Context) (backend.Health, error)
}

// Options configures the chat screen.
type Options struct {
	Session *chatsvc.Session
	Health  HealthChecker // optional

	BackendURL  string
	StorageInfo string

	Theme              string
	Streaming          bool
	RenderMarkdown     bool
	ShowTimestamps     bool
	MaxAttachmentBytes int64

	// Watch reloads the transcript when another process changes the history.
	Watch bool
}

// healthState is the last backend probe result.
type healthState struct {
	checked bool
	ok      bool
	status  string
	latency time.Duration
	err     error
}

// overlayKind selects the panel shown above the input.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHelp
	overlayStats
)

// Minimum dimensions before the layout gives up and shows a notice.
const (
	minWidth  = 30
	minHeight = 10
)

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx     context.Context
	opts    Options
	session *chatsvc.Session
	theme   *styles.Theme
	keys    KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	markdown *markdownRenderer

	messages    []model.Message
	attachments []model.AttachedFile
	streaming   bool

	loading      bool
	startedAt    time.Time
	confirmClear bool
	overlay      overlayKind
	stats        model.ChatStats
	notice       string
	noticeIsErr  bool
	health       healthState

	width  int
	height int
	ready  bool

	cancelMgr *cancelManager
}

// New creates the chat model. ctx bounds every exchange started from it.
func New(ctx context.Context, opts Options) Model {
	if opts.MaxAttachmentBytes == 0 {
		opts.MaxAttachmentBytes = attach.DefaultMaxBytes
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message... (/help for commands)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.Prompt = "> "
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	theme := styles.NewTheme(opts.Theme)
	sp.Style = theme.Spinner

	m := Model{
		ctx:       ctx,
		opts:      opts,
		session:   opts.Session,
		theme:     theme,
		keys:      DefaultKeyMap(),
		viewport:  viewport.New(80, 20),
		input:     ta,
		spinner:   sp,
		markdown:  newMarkdownRenderer(theme.GlamourStyle(), opts.RenderMarkdown),
		streaming: opts.Streaming,
		cancelMgr: newCancelManager(),
	}
	m.messages = m.session.Messages()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, healthCmd(m.ctx, m.opts.Health))
}

// Messages returns the transcript currently shown.
func (m Model) Messages() []model.Message {
	return m.messages
}

// Attachments returns the files waiting to be sent.
func (m Model) Attachments() []model.AttachedFile {
	return m.attachments
}

// Streaming reports whether new messages use token streaming.
func (m Model) Streaming() bool {
	return m.streaming
}

// Loading reports whether an exchange is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Notice returns the current status-line notice.
func (m Model) Notice() string {
	return m.notice
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeIsErr = false
}

func (m *Model) setError(s string) {
	m.notice = s
	m.noticeIsErr = true
}
