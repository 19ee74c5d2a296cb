// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/spf13/cobra"

	chatui "github.com/jeranaias/chatbot-tui/internal/ui/chat"
)

type tuiOptions struct {
	Theme      string
	NoStream   bool
	NoMarkdown bool
}

func newTUICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "tui",
		Short:       "Open the full-screen chat (default)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLog: logToFile},
		RunE:        a.runTUI,
	}
	addTUIFlags(cmd, &a.tui)
	return cmd
}

func addTUIFlags(cmd *cobra.Command, opts *tuiOptions) {
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "color theme: dark or light")
	cmd.Flags().BoolVar(&opts.NoStream, "no-stream", false, "request whole replies instead of streaming")
	cmd.Flags().BoolVar(&opts.NoMarkdown, "no-markdown", false, "show bot replies as plain text")
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	if err := RequiresTTY("open the chat screen", "use 'chatbot chat' or 'chatbot ask' when piping"); err != nil {
		return err
	}

	ctx := cmd.Context()
	session, cleanup, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	theme := a.cfg.UI.Theme
	if a.tui.Theme != "" {
		theme = a.tui.Theme
	}
	history := session.History()

	return chatui.Run(ctx, chatui.Options{
		Session:            session,
		Health:             a.newClient(),
		BackendURL:         a.cfg.Backend.URL,
		StorageInfo:        history.Slot().Describe(),
		Theme:              theme,
		Streaming:          a.cfg.Chat.Streaming && !a.tui.NoStream,
		RenderMarkdown:     a.cfg.UI.RenderMarkdown && !a.tui.NoMarkdown,
		ShowTimestamps:     a.cfg.UI.ShowTimestamps,
		MaxAttachmentBytes: a.cfg.Chat.MaxAttachmentBytes,
		Watch:              a.cfg.Storage.Watch,
	})
}
