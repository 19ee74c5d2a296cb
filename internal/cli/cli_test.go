// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbot-tui/internal/backend"
	"github.com/jeranaias/chatbot-tui/internal/config"
	"github.com/jeranaias/chatbot-tui/internal/devserver"
	"github.com/jeranaias/chatbot-tui/internal/model"
)

// unreachableURL refuses connections on any normal host.
const unreachableURL = "http://127.0.0.1:1"

func startBackend(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(devserver.New(devserver.WithChunkDelay(0)).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// fakeTTY makes the CLI believe stdin is (or is not) a terminal.
func fakeTTY(t *testing.T, isTTY bool) {
	t.Helper()
	prev := stdinIsTTY
	stdinIsTTY = func() bool { return isTTY }
	t.Cleanup(func() { stdinIsTTY = prev })
}

// runCLI executes the root command with CHATBOT_HOME set to home.
func runCLI(t *testing.T, home, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CHATBOT_HOME", home)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func loadStats(t *testing.T, home string) model.ChatStats {
	t.Helper()
	out, err := runCLI(t, home, "", "history", "stats", "--json")
	require.NoError(t, err)
	var stats model.ChatStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	return stats
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_StreamsReplyAndSavesHistory(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()
	url := startBackend(t)

	out, err := runCLI(t, home, "", "--backend", url, "ask", "hello")
	require.NoError(t, err)
	assert.Equal(t, "You said: hello\n", out)

	stats := loadStats(t, home)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.User)
	assert.Equal(t, 1, stats.Bot)
	assert.FileExists(t, filepath.Join(home, "chatbot_messages.json"))
}

func TestAsk_NoStream(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()
	url := startBackend(t)

	out, err := runCLI(t, home, "", "-b", url, "ask", "--no-stream", "hi", "there")
	require.NoError(t, err)
	assert.Equal(t, "You said: hi there\n", out)
}

func TestAsk_ReadsMessageFromStdin(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()
	url := startBackend(t)

	out, err := runCLI(t, home, "piped question\n", "-b", url, "ask")
	require.NoError(t, err)
	assert.Equal(t, "You said: piped question\n", out)
}

func TestAsk_AttachesFiles(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()
	url := startBackend(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("remember this"), 0644))

	out, err := runCLI(t, home, "", "-b", url, "ask", "-f", path, "read", "this")
	require.NoError(t, err)
	assert.Equal(t, "You said: read this\n\nReceived notes.txt (text/plain, 13 B).\n", out)

	out, err = runCLI(t, home, "", "history", "show", "--json")
	require.NoError(t, err)
	var msgs []model.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "read this [Attached files: `notes.txt` (PLAIN, 0 KB)]", msgs[0].Text)
}

func TestAsk_MissingFile(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()

	_, err := runCLI(t, home, "", "-b", startBackend(t), "ask", "-f", filepath.Join(home, "nope.txt"), "hi")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Equal(t, 0, loadStats(t, home).Total)
}

func TestAsk_NothingToSend(t *testing.T) {
	fakeTTY(t, false)

	_, err := runCLI(t, t.TempDir(), "   \n", "ask")
	require.Error(t, err)
	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestAsk_BackendUnreachable(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()

	_, err := runCLI(t, home, "", "-b", unreachableURL, "ask", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))

	// The failure is part of the saved conversation.
	out, err := runCLI(t, home, "", "history", "show", "--json")
	require.NoError(t, err)
	var msgs []model.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, model.RoleSystem, last.Role)
	assert.True(t, strings.HasPrefix(last.Text, model.ErrorPrefix))
}

func TestAsk_NoSaveLeavesHistoryAlone(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()

	out, err := runCLI(t, home, "", "-b", startBackend(t), "ask", "--no-save", "quiet")
	require.NoError(t, err)
	assert.Equal(t, "You said: quiet\n", out)
	assert.Equal(t, 0, loadStats(t, home).Total)
}

func TestAsk_MemoryStorage(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()

	_, err := runCLI(t, home, "", "-b", startBackend(t), "--storage", "memory", "ask", "hello")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(home, "chatbot_messages.json"))
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory_ShowAndStats(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()
	url := startBackend(t)

	out, err := runCLI(t, home, "", "history", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved messages.")

	_, err = runCLI(t, home, "", "-b", url, "ask", "first")
	require.NoError(t, err)
	_, err = runCLI(t, home, "", "-b", url, "ask", "second")
	require.NoError(t, err)

	out, err = runCLI(t, home, "", "history", "show", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "Bot")
	assert.Contains(t, out, "You said: first")
	assert.Contains(t, out, "You said: second")

	out, err = runCLI(t, home, "", "history", "show", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "You said: second")
	assert.NotContains(t, out, "first")

	out, err = runCLI(t, home, "", "history", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Chat history")
	assert.Contains(t, out, "file:")
	assert.Contains(t, out, "4")
}

func TestHistory_Export(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()

	_, err := runCLI(t, home, "", "-b", startBackend(t), "ask", "export me")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "history.json")
	out, err := runCLI(t, home, "", "history", "export", "--format", "json", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 messages")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var msgs []model.Message
	require.NoError(t, json.Unmarshal(data, &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "You said: export me", msgs[1].Text)

	out, err = runCLI(t, home, "", "history", "export", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "You said: export me")
	assert.Contains(t, out, "generator: chatbot")

	_, err = runCLI(t, home, "", "history", "export", "--format", "pdf", "-o", "-")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHistory_ClearRequiresYesWithoutTerminal(t *testing.T) {
	fakeTTY(t, false)
	home := t.TempDir()

	_, err := runCLI(t, home, "", "-b", startBackend(t), "ask", "keep")
	require.NoError(t, err)

	_, err = runCLI(t, home, "", "history", "clear")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Equal(t, 2, loadStats(t, home).Total)

	out, err := runCLI(t, home, "", "history", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Chat history cleared")
	assert.Equal(t, 0, loadStats(t, home).Total)
}

func TestHistory_ClearPrompts(t *testing.T) {
	fakeTTY(t, true)
	home := t.TempDir()

	_, err := runCLI(t, home, "", "-b", startBackend(t), "ask", "keep")
	require.NoError(t, err)

	answer := false
	var asked string
	prev := askConfirm
	askConfirm = func(message string) (bool, error) {
		asked = message
		return answer, nil
	}
	t.Cleanup(func() { askConfirm = prev })

	out, err := runCLI(t, home, "", "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, asked, "delete the saved chat history")
	assert.Equal(t, 2, loadStats(t, home).Total)

	answer = true
	_, err = runCLI(t, home, "", "history", "clear")
	require.NoError(t, err)
	assert.Equal(t, 0, loadStats(t, home).Total)
}

// =============================================================================
// PING, CONFIG, VERSION
// =============================================================================

func TestPing(t *testing.T) {
	url := startBackend(t)

	out, err := runCLI(t, t.TempDir(), "", "-b", url, "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "[OK]")
	assert.Contains(t, out, url)
	assert.Contains(t, out, "healthy")

	out, err = runCLI(t, t.TempDir(), "", "-b", url, "ping", "--json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "healthy", got["status"])
}

func TestPing_Unreachable(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "-b", unreachableURL, "ping")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
}

func TestConfig_PathInitShow(t *testing.T) {
	home := t.TempDir()
	want := filepath.Join(home, "config.toml")

	out, err := runCLI(t, home, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	_, err = runCLI(t, home, "", "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, want)

	_, err = runCLI(t, home, "", "config", "init")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, err = runCLI(t, home, "", "config", "init", "--force")
	require.NoError(t, err)

	out, err = runCLI(t, home, "", "-b", "http://example.test:9000", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[backend]")
	assert.Contains(t, out, "http://example.test:9000")
}

func TestConfig_EnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CHATBOT_BACKEND_URL", "http://from-env:1234")

	out, err := runCLI(t, home, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "http://from-env:1234")
}

func TestConfig_InvalidFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("[backend\nurl = "), 0600))

	_, err := runCLI(t, home, "", "history", "stats")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	// path still works so the user can find the file.
	out, err := runCLI(t, home, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")
}

func TestStorageFlag_Invalid(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "--storage", "floppy", "history", "stats")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "chatbot "+Version))
}

func TestRoot_RequiresTerminal(t *testing.T) {
	fakeTTY(t, false)

	_, err := runCLI(t, t.TempDir(), "")
	require.Error(t, err)
	var ttyErr *TTYRequiredError
	assert.ErrorAs(t, err, &ttyErr)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Contains(t, err.Error(), "chatbot chat")
}

func TestRequiresTTY(t *testing.T) {
	prevOut := stdoutIsTTY
	t.Cleanup(func() { stdoutIsTTY = prevOut })

	fakeTTY(t, true)
	stdoutIsTTY = func() bool { return true }
	assert.NoError(t, RequiresTTY("draw", ""))

	stdoutIsTTY = func() bool { return false }
	err := RequiresTTY("draw", "pipe elsewhere")
	require.Error(t, err)
	assert.Equal(t, "not running in a terminal; cannot draw interactively (pipe elsewhere)", err.Error())

	fakeTTY(t, false)
	stdoutIsTTY = func() bool { return true }
	assert.Error(t, RequiresTTY("draw", ""))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", &UsageError{Reason: "bad"}, ExitUsageError},
		{"config", &ConfigError{Err: errors.New("bad toml")}, ExitConfigError},
		{"validation", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}, ExitConfigError},
		{"http status", &backend.HTTPError{Status: 500}, ExitNetworkError},
		{"remote", &backend.RemoteError{Message: "model overloaded"}, ExitGeneralError},
		{"deadline", context.DeadlineExceeded, ExitTimeoutError},
		{"cancelled", context.Canceled, ExitInterrupted},
		{"missing file", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, ExitNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_Hints(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &backend.HTTPError{Status: 502})
	assert.Contains(t, buf.String(), "[ERROR] HTTP error! status: 502")
	assert.Contains(t, buf.String(), "chatbot devserver")

	buf.Reset()
	DisplayError(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestRequireConfirmation(t *testing.T) {
	ok, err := RequireConfirmation(true, "do it")
	require.NoError(t, err)
	assert.True(t, ok)

	fakeTTY(t, false)
	ok, err = RequireConfirmation(false, "do it")
	assert.False(t, ok)
	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "one two\nthree", WrapText("one two three", 11))
	assert.Equal(t, "keep\n\nlines", WrapText("keep\n\nlines", 40))
}
