// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot-tui/internal/attach"
	"github.com/jeranaias/chatbot-tui/internal/chat"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/store"
	"github.com/jeranaias/chatbot-tui/internal/util"
)

type askOptions struct {
	Files    []string
	NoStream bool
	NoSave   bool
}

func newAskCmd(a *app) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the reply",
		Long: `Send one message and print the reply to stdout.

The message is the joined arguments. With no arguments it is read from
stdin, so the command works in pipelines:

  git diff | chatbot ask -f README.md
  chatbot ask "What is in this file?" -f notes.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "attach a file (repeatable)")
	cmd.Flags().BoolVar(&opts.NoStream, "no-stream", false, "request the whole reply at once")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "do not read or write the saved history")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, args []string, opts askOptions) error {
	text := strings.Join(args, " ")
	if text == "" && !IsTTY() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}

	files := make([]model.AttachedFile, 0, len(opts.Files))
	for _, path := range opts.Files {
		f, err := attach.Open(util.ExpandHome(path), a.cfg.Chat.MaxAttachmentBytes)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	if strings.TrimSpace(text) == "" && len(files) == 0 {
		return &UsageError{Reason: "nothing to send", Example: `chatbot ask "hello"`}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var session *chat.Session
	if opts.NoSave {
		session = chat.NewSession(store.New(), a.newClient(), nil)
	} else {
		s, cleanup, err := a.openSession(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		session = s
	}

	out := cmd.OutOrStdout()
	wrote := false
	unsubscribe := session.Store().Subscribe(func(ev store.Event, _ []model.Message) {
		switch {
		case ev.Kind == store.EventDelta:
			fmt.Fprint(out, ev.Delta)
			wrote = true
		case ev.Kind == store.EventAppended && ev.Message.Role == model.RoleBot:
			fmt.Fprint(out, ev.Message.Text)
			wrote = true
		}
	})
	defer unsubscribe()

	err := session.Send(ctx, text, files, a.cfg.Chat.Streaming && !opts.NoStream)
	if wrote {
		fmt.Fprintln(out)
	}
	return err
}
