// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbot-tui/internal/backend"
	"github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/store"
)

func newTestREPL(t *testing.T, url string, streaming bool) (*repl, *bytes.Buffer) {
	t.Helper()
	session := chat.NewSession(store.New(), backend.NewClient(url), nil)
	var out bytes.Buffer
	r := newREPL(session, &out, streaming, 0)
	t.Cleanup(r.Close)
	return r, &out
}

func TestREPL_StreamsReply(t *testing.T) {
	r, out := newTestREPL(t, startBackend(t), true)

	r.send(context.Background(), "hello")
	assert.Equal(t, "bot> You said: hello\n", out.String())
	assert.Len(t, r.session.Messages(), 2)
}

func TestREPL_StreamToggle(t *testing.T) {
	r, out := newTestREPL(t, startBackend(t), true)
	ctx := context.Background()

	_, err := r.command(ctx, "/stream off")
	require.NoError(t, err)
	assert.False(t, r.streaming)
	out.Reset()

	r.send(ctx, "hi")
	assert.Equal(t, "bot> You said: hi\n", out.String())

	_, err = r.command(ctx, "/stream")
	require.NoError(t, err)
	assert.True(t, r.streaming)

	_, err = r.command(ctx, "/stream sideways")
	assert.Error(t, err)
}

func TestREPL_BackendErrorIsShown(t *testing.T) {
	r, out := newTestREPL(t, unreachableURL, true)

	r.send(context.Background(), "hello")
	assert.Contains(t, out.String(), model.ErrorPrefix)

	msgs := r.session.Messages()
	require.NotEmpty(t, msgs)
	assert.True(t, msgs[len(msgs)-1].IsError())
}

func TestREPL_AttachAndDetach(t *testing.T) {
	r, out := newTestREPL(t, startBackend(t), true)
	ctx := context.Background()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("aaa"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("# b"), 0644))

	_, err := r.command(ctx, "/attach "+a)
	require.NoError(t, err)
	_, err = r.command(ctx, "/attach "+b)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Attached `a.txt`")
	assert.Equal(t, "you (2 attached)> ", r.prompt())

	_, err = r.command(ctx, "/detach 3")
	assert.Error(t, err)

	_, err = r.command(ctx, "/detach 1")
	require.NoError(t, err)
	require.Len(t, r.files, 1)
	assert.Equal(t, "b.md", r.files[0].Name)

	out.Reset()
	r.send(ctx, "look")
	assert.Contains(t, out.String(), "Received b.md")
	assert.Empty(t, r.files)
	assert.Equal(t, "you> ", r.prompt())

	_, err = r.command(ctx, "/detach")
	assert.Error(t, err)

	_, err = r.command(ctx, "/attach "+filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestREPL_Clear(t *testing.T) {
	r, _ := newTestREPL(t, startBackend(t), true)
	ctx := context.Background()

	r.send(ctx, "one")
	require.Len(t, r.session.Messages(), 2)

	r.confirm = func(string) (bool, error) { return false, nil }
	_, err := r.command(ctx, "/clear")
	require.NoError(t, err)
	assert.Len(t, r.session.Messages(), 2)

	r.confirm = func(string) (bool, error) { return true, nil }
	_, err = r.command(ctx, "/clear")
	require.NoError(t, err)
	assert.Empty(t, r.session.Messages())
}

func TestREPL_HistoryAndStats(t *testing.T) {
	r, out := newTestREPL(t, startBackend(t), true)
	ctx := context.Background()

	_, err := r.command(ctx, "/history")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No messages yet")

	r.send(ctx, "first")
	r.send(ctx, "second")
	out.Reset()

	_, err = r.command(ctx, "/history 1")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "You said: second")
	assert.NotContains(t, out.String(), "first")

	out.Reset()
	_, err = r.command(ctx, "/stats")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Messages: 4 (you 2, bot 2)")
}

func TestREPL_QuitAndUnknown(t *testing.T) {
	r, out := newTestREPL(t, startBackend(t), true)
	ctx := context.Background()

	quit, err := r.command(ctx, "/quit")
	require.NoError(t, err)
	assert.True(t, quit)

	quit, err = r.command(ctx, "/EXIT")
	require.NoError(t, err)
	assert.True(t, quit)

	quit, err = r.command(ctx, "/frobnicate")
	assert.False(t, quit)
	assert.ErrorContains(t, err, "unknown command /frobnicate")

	_, err = r.command(ctx, "/help")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "/attach <path>")
}

func TestCompleteCommand(t *testing.T) {
	assert.Equal(t, []string{"/stats", "/stream"}, completeCommand("/st"))
	assert.Nil(t, completeCommand("hello"))
	assert.Nil(t, completeCommand("/attach x"))
}
