// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat for terminals where the full screen is unwanted.
//
// Replies stream onto the terminal as they arrive. Ctrl+C cancels the reply
// in flight; at the prompt it only clears the line. Ctrl+D or /quit exits.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot-tui/internal/attach"
	"github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/config"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/store"
	"github.com/jeranaias/chatbot-tui/internal/util"
)

func newChatCmd(a *app) *cobra.Command {
	var noStream bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line without the full-screen interface",
		Long: `Chat line by line. Type a message and press Enter.

Lines starting with / are commands; /help lists them.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLog: logToFile},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runREPL(cmd, a.cfg.Chat.Streaming && !noStream)
		},
	}
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "request whole replies instead of streaming")
	return cmd
}

func (a *app) runREPL(cmd *cobra.Command, streaming bool) error {
	ctx := cmd.Context()
	session, cleanup, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	line.SetCompleter(completeCommand)

	historyPath, err := config.HistoryFilePath()
	if err == nil {
		loadInputHistory(line, historyPath)
		defer saveInputHistory(line, historyPath)
	}

	r := newREPL(session, cmd.OutOrStdout(), streaming, a.cfg.Chat.MaxAttachmentBytes)
	r.confirm = func(question string) (bool, error) {
		answer, err := line.Prompt(question + " [y/N] ")
		if err != nil {
			return false, nil
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes", nil
	}
	defer r.Close()

	r.out.Banner("chatbot - %s", a.cfg.Backend.URL)
	r.out.Dim("History: %s (%d messages). Type /help for commands, Ctrl+D to quit.",
		session.History().Slot().Describe(), len(session.Messages()))

	for {
		input, err := line.Prompt(r.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			r.out.Newline()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			quit, err := r.command(ctx, input)
			if err != nil {
				r.out.Error(err.Error())
			}
			if quit {
				return nil
			}
			continue
		}
		r.send(ctx, input)
	}
}

func loadInputHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		log.Printf("chat: reading input history: %v", err)
	}
}

func saveInputHistory(line *liner.State, path string) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		log.Printf("chat: saving input history: %v", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		log.Printf("chat: saving input history: %v", err)
	}
}

// =============================================================================
// REPL STATE
// =============================================================================

// repl is the terminal-independent part of the line-mode chat.
type repl struct {
	session   *chat.Session
	out       *printer
	streaming bool
	maxBytes  int64
	files     []model.AttachedFile

	// confirm asks a yes/no question. Nil means always yes.
	confirm func(question string) (bool, error)

	unsubscribe func()
	replying    bool // a streamed reply line is open
}

func newREPL(session *chat.Session, w io.Writer, streaming bool, maxBytes int64) *repl {
	r := &repl{
		session:   session,
		out:       newPrinter(w),
		streaming: streaming,
		maxBytes:  maxBytes,
	}
	r.unsubscribe = session.Store().Subscribe(r.onEvent)
	return r
}

func (r *repl) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

func (r *repl) prompt() string {
	if n := len(r.files); n > 0 {
		return fmt.Sprintf("you (%d attached)> ", n)
	}
	return "you> "
}

// onEvent prints conversation changes. It runs on the goroutine that sent
// the message, so it needs no locking.
func (r *repl) onEvent(ev store.Event, _ []model.Message) {
	switch ev.Kind {
	case store.EventStreamStarted:
		r.replying = true
		r.out.Bot("bot> ")
	case store.EventDelta:
		r.out.Bot(ev.Delta)
	case store.EventFinalized, store.EventDiscarded:
		if r.replying {
			r.out.Newline()
			r.replying = false
		}
	case store.EventAppended:
		switch {
		case ev.Message.Role == model.RoleBot:
			r.out.Bot("bot> " + ev.Message.Text)
			r.out.Newline()
		case ev.Message.IsError():
			r.out.Error(ev.Message.Text)
		case ev.Message.Role == model.RoleSystem:
			r.out.System("%s", ev.Message.Text)
		}
	}
}

// send runs one exchange. Ctrl+C cancels it.
func (r *repl) send(ctx context.Context, text string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := r.session.Send(ctx, text, r.files, r.streaming)
	if errors.Is(err, chat.ErrBusy) || errors.Is(err, chat.ErrEmptyMessage) {
		r.out.Error(err.Error())
		return
	}
	r.files = nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

type replCommand struct {
	usage string
	help  string
	run   func(r *repl, ctx context.Context, args []string) (quit bool, err error)
}

var replCommands map[string]replCommand

func init() {
	replCommands = map[string]replCommand{
		"/help":    {"/help", "show this list", (*repl).cmdHelp},
		"/quit":    {"/quit", "leave the chat", (*repl).cmdQuit},
		"/exit":    {"/exit", "leave the chat", (*repl).cmdQuit},
		"/attach":  {"/attach <path>", "attach a file to the next message", (*repl).cmdAttach},
		"/detach":  {"/detach [n|all]", "remove attachment n, or all of them", (*repl).cmdDetach},
		"/files":   {"/files", "list pending attachments", (*repl).cmdFiles},
		"/clear":   {"/clear", "delete the conversation and its saved history", (*repl).cmdClear},
		"/stats":   {"/stats", "show message counts", (*repl).cmdStats},
		"/stream":  {"/stream [on|off]", "toggle streaming replies", (*repl).cmdStream},
		"/history": {"/history [n]", "print the last n messages (default 10)", (*repl).cmdHistory},
	}
}

func completeCommand(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for name := range replCommands {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// command runs a slash command line.
func (r *repl) command(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	c, ok := replCommands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %s, type /help", fields[0])
	}
	return c.run(r, ctx, fields[1:])
}

func (r *repl) cmdHelp(_ context.Context, _ []string) (bool, error) {
	names := make([]string, 0, len(replCommands))
	for name := range replCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := replCommands[name]
		r.out.Dim("  %-18s %s", c.usage, c.help)
	}
	return false, nil
}

func (r *repl) cmdQuit(_ context.Context, _ []string) (bool, error) {
	return true, nil
}

func (r *repl) cmdAttach(_ context.Context, args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("usage: /attach <path>")
	}
	f, err := attach.Open(util.ExpandHome(strings.Join(args, " ")), r.maxBytes)
	if err != nil {
		return false, err
	}
	r.files = append(r.files, f)
	r.out.System("Attached %s", attach.Label(f))
	return false, nil
}

func (r *repl) cmdDetach(_ context.Context, args []string) (bool, error) {
	if len(r.files) == 0 {
		return false, errors.New("no files attached")
	}
	if len(args) == 0 || args[0] == "all" {
		r.files = nil
		r.out.System("Removed all attachments")
		return false, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(r.files) {
		return false, fmt.Errorf("no attachment %s, have %d", args[0], len(r.files))
	}
	removed := r.files[n-1]
	r.files = append(r.files[:n-1:n-1], r.files[n:]...)
	r.out.System("Removed %s", removed.Name)
	return false, nil
}

func (r *repl) cmdFiles(_ context.Context, _ []string) (bool, error) {
	if len(r.files) == 0 {
		r.out.Dim("No files attached")
		return false, nil
	}
	for i, f := range r.files {
		r.out.Dim("  %d. %s", i+1, attach.Label(f))
	}
	return false, nil
}

func (r *repl) cmdClear(ctx context.Context, _ []string) (bool, error) {
	if r.confirm != nil {
		ok, err := r.confirm("Clear chat history?")
		if err != nil || !ok {
			return false, err
		}
	}
	if err := r.session.Clear(ctx); err != nil {
		return false, fmt.Errorf("failed to clear history: %w", err)
	}
	r.out.System("Chat history cleared")
	return false, nil
}

func (r *repl) cmdStats(ctx context.Context, _ []string) (bool, error) {
	s := r.session.Stats(ctx)
	r.out.Dim("Messages: %d (you %d, bot %d)", s.Total, s.User, s.Bot)
	return false, nil
}

func (r *repl) cmdStream(_ context.Context, args []string) (bool, error) {
	switch {
	case len(args) == 0:
		r.streaming = !r.streaming
	case args[0] == "on":
		r.streaming = true
	case args[0] == "off":
		r.streaming = false
	default:
		return false, errors.New("usage: /stream [on|off]")
	}
	if r.streaming {
		r.out.System("Streaming on")
	} else {
		r.out.System("Streaming off")
	}
	return false, nil
}

func (r *repl) cmdHistory(_ context.Context, args []string) (bool, error) {
	n := 10
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return false, errors.New("usage: /history [n]")
		}
		n = v
	}
	msgs := r.session.Messages()
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	if len(msgs) == 0 {
		r.out.Dim("No messages yet")
	}
	for _, m := range msgs {
		r.out.Message(m)
	}
	return false, nil
}
