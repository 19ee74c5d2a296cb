// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot-tui/internal/devserver"
)

func newDevServerCmd(a *app) *cobra.Command {
	var (
		addr       string
		chunkDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local echo backend for development",
		Long: `Run a backend that answers every message with "You said: <message>".

It speaks the same protocol as a real backend, streaming the reply
word by word, so the client can be tried without one.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLog: logToStderr},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.DevServer.Addr
			}
			if !cmd.Flags().Changed("chunk-delay") {
				chunkDelay = a.cfg.DevServer.ChunkDelay.Duration
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			srv := devserver.New(devserver.WithChunkDelay(chunkDelay))
			fmt.Fprintf(cmd.OutOrStdout(), "Echo backend listening on http://%s (Ctrl+C to stop)\n", addr)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default devserver.addr, 127.0.0.1:5050)")
	cmd.Flags().DurationVar(&chunkDelay, "chunk-delay", 0, "pause between streamed words")
	return cmd
}
