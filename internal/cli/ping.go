// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// pingTimeout bounds the health request independently of backend.timeout,
// which is sized for long replies.
const pingTimeout = 10 * time.Second

func newPingCmd(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
			defer cancel()

			url := a.cfg.Backend.URL
			h, err := a.newClient().Health(ctx)
			if err != nil {
				return fmt.Errorf("backend %s: %w", url, err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"url":        url,
					"status":     h.Status,
					"latency_ms": h.Latency.Milliseconds(),
					"details":    h.Details,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s %s\n", RenderStatus(h.Status), url, DimStyle.Render(fmt.Sprintf("(%s, %s)", h.Status, h.Latency.Round(time.Millisecond))))

			keys := make([]string, 0, len(h.Details))
			for k := range h.Details {
				if k != "status" {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %s%v\n", RenderLabel(k), h.Details[k])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")
	return cmd
}
