// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbot-tui/internal/backend"
	chatsvc "github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/storage"
	"github.com/jeranaias/chatbot-tui/internal/store"
)

func newTestModel(t *testing.T) (Model, *storage.History) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, l := range []string{`{"content":"Hi"}`, `{"content":" there"}`, `{"type":"end"}`} {
			fmt.Fprintf(w, "data: %s\n\n", l)
		}
	}))
	t.Cleanup(srv.Close)

	hist := storage.NewHistory(storage.NewMemorySlot(storage.DefaultKey))
	s := chatsvc.NewSession(store.New(), backend.NewClient(srv.URL), hist)
	s.Start(context.Background())
	t.Cleanup(s.Close)

	m := New(context.Background(), Options{
		Session:        s,
		BackendURL:     srv.URL,
		Theme:          "dark",
		Streaming:      true,
		ShowTimestamps: true,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), hist
}

// update feeds msg to m and returns the new model and command.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// collect runs cmd and flattens batches into the resulting messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func typeLine(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// =============================================================================
// SENDING
// =============================================================================

func TestModel_WelcomeWhenEmpty(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "Welcome to chatbot")
}

func TestModel_SendStreamsReply(t *testing.T) {
	m, hist := newTestModel(t)

	m, cmd := typeLine(t, m, "Hello")
	assert.True(t, m.Loading())
	assert.Empty(t, m.input.Value())

	var done *exchangeDoneMsg
	for _, msg := range collect(cmd) {
		if d, ok := msg.(exchangeDoneMsg); ok {
			done = &d
		}
	}
	require.NotNil(t, done)
	require.NoError(t, done.err)

	m, _ = update(t, m, *done)
	assert.False(t, m.Loading())
	require.Len(t, m.Messages(), 2)
	assert.Equal(t, "Hi there", m.Messages()[1].Text)
	assert.Contains(t, m.View(), "Hi there")
	assert.Len(t, hist.Load(context.Background()), 2)
}

func TestModel_EnterWhileLoadingIsRejected(t *testing.T) {
	m, _ := newTestModel(t)
	m.loading = true

	m, cmd := typeLine(t, m, "second")
	assert.Nil(t, cmd)
	assert.Equal(t, chatsvc.ErrBusy.Error(), m.Notice())
	assert.Equal(t, "second", m.input.Value())
}

func TestModel_EmptyEnterDoesNothing(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := typeLine(t, m, "   ")
	assert.Nil(t, cmd)
	assert.False(t, m.Loading())
}

func TestModel_EscCancelsExchange(t *testing.T) {
	m, _ := newTestModel(t)
	ctx, cancel := context.WithCancel(context.Background())
	m.loading = true
	m.cancelMgr.set(cancel)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, "Stopping reply...", m.Notice())

	m, _ = update(t, m, exchangeDoneMsg{err: fmt.Errorf("stream: %w", context.Canceled)})
	assert.False(t, m.Loading())
	assert.Equal(t, "Reply stopped", m.Notice())
}

func TestModel_TranscriptMsgSyncsStore(t *testing.T) {
	m, _ := newTestModel(t)
	id := m.session.Store().BeginStream()
	m.session.Store().AppendDelta(id, "partial")

	m, _ = update(t, m, transcriptMsg{})
	require.Len(t, m.Messages(), 1)
	assert.True(t, m.Messages()[0].IsStreaming)
	assert.Contains(t, m.View(), "partial"+streamCursor)
}

func TestModel_ErrorMessageRendered(t *testing.T) {
	m, _ := newTestModel(t)
	m.session.Store().Append(model.NewSystemError(&backend.HTTPError{Status: 500}))
	m, _ = update(t, m, transcriptMsg{})
	assert.Contains(t, m.View(), "HTTP error! status: 500")
}

// =============================================================================
// CLEAR
// =============================================================================

func TestModel_ClearAsksFirst(t *testing.T) {
	m, hist := newTestModel(t)
	m.session.Store().Append(model.NewUserMessage("keep me?"))
	m, _ = update(t, m, transcriptMsg{})

	m, _ = typeLine(t, m, "/clear")
	assert.True(t, m.confirmClear)
	assert.Contains(t, m.View(), "Clear chat history?")

	m, cmd := update(t, m, keyRune('n'))
	assert.Nil(t, cmd)
	assert.False(t, m.confirmClear)
	assert.Len(t, m.Messages(), 1)

	m, _ = typeLine(t, m, "/clear")
	m, cmd = update(t, m, keyRune('y'))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Empty(t, m.Messages())
	assert.Equal(t, "History cleared", m.Notice())
	assert.Empty(t, hist.Load(context.Background()))
}

func TestModel_ClearRefusedWhileLoading(t *testing.T) {
	m, _ := newTestModel(t)
	m.loading = true
	m, _ = typeLine(t, m, "/clear")
	assert.False(t, m.confirmClear)
	assert.Equal(t, chatsvc.ErrBusy.Error(), m.Notice())
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestModel_AttachAndDetach(t *testing.T) {
	m, _ := newTestModel(t)
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0600))
	}

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		m, _ = typeLine(t, m, "/attach "+filepath.Join(dir, name))
	}
	require.Len(t, m.Attachments(), 3)
	assert.Contains(t, m.View(), "a.txt")

	m, _ = typeLine(t, m, "/detach 2")
	require.Len(t, m.Attachments(), 2)
	assert.Equal(t, "a.txt", m.Attachments()[0].Name)
	assert.Equal(t, "c.txt", m.Attachments()[1].Name)

	m, _ = typeLine(t, m, "/detach 9")
	assert.Len(t, m.Attachments(), 2)

	m, _ = typeLine(t, m, "/detach all")
	assert.Empty(t, m.Attachments())
}

func TestModel_AttachMissingFile(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = typeLine(t, m, "/attach /no/such/file")
	assert.Empty(t, m.Attachments())
	assert.True(t, m.noticeIsErr)
}

func TestModel_StreamToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = typeLine(t, m, "/stream off")
	assert.False(t, m.Streaming())
	m, _ = typeLine(t, m, "/stream")
	assert.True(t, m.Streaming())
	m, _ = typeLine(t, m, "/stream maybe")
	assert.True(t, m.Streaming())
	assert.True(t, m.noticeIsErr)
}

func TestModel_ThemeToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = typeLine(t, m, "/theme")
	assert.Equal(t, "light", m.theme.Name)
}

func TestModel_HelpAndStatsOverlays(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = typeLine(t, m, "/help")
	assert.Contains(t, m.View(), "/attach <path>")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, overlayNone, m.overlay)

	m.session.Store().Append(model.NewUserMessage("one"))
	m.session.Store().Append(model.NewBotMessage("two"))
	m, cmd := typeLine(t, m, "/stats")
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, 2, m.stats.Total)
	assert.Contains(t, m.View(), "Chat statistics")
}

func TestModel_UnknownCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = typeLine(t, m, "/frobnicate")
	assert.Contains(t, m.Notice(), "Unknown command /frobnicate")
}

func TestModel_QuitCommand(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := typeLine(t, m, "/quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_HealthShownInHeader(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, healthMsg{health: backend.Health{Status: "healthy"}})
	assert.Contains(t, m.View(), "healthy")

	m, _ = update(t, m, healthMsg{err: fmt.Errorf("connection refused")})
	assert.Contains(t, m.View(), "offline")
}

func TestCancelManager(t *testing.T) {
	cm := newCancelManager()
	assert.False(t, cm.cancel())

	ctx1, cancel1 := context.WithCancel(context.Background())
	cm.set(cancel1)
	ctx2, cancel2 := context.WithCancel(context.Background())
	cm.set(cancel2)
	assert.Error(t, ctx1.Err(), "replaced function is cancelled")
	assert.NoError(t, ctx2.Err())

	assert.True(t, cm.cancel())
	assert.Error(t, ctx2.Err())
}
