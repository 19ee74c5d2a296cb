// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Inspect, export and clear the saved conversation.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot-tui/internal/export"
	"github.com/jeranaias/chatbot-tui/internal/model"
	"github.com/jeranaias/chatbot-tui/internal/storage"
	"github.com/jeranaias/chatbot-tui/internal/ui/styles"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show, export or clear the saved conversation",
	}
	cmd.AddCommand(
		newHistoryShowCmd(a),
		newHistoryStatsCmd(a),
		newHistoryClearCmd(a),
		newHistoryExportCmd(a),
	)
	return cmd
}

// withHistory opens the configured history for the duration of fn.
func (a *app) withHistory(cmd *cobra.Command, fn func(h *storage.History) error) error {
	h, err := a.openHistory(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Slot().Close(); err != nil {
			log.Printf("storage: close failed: %v", err)
		}
	}()
	return fn(h)
}

// =============================================================================
// SHOW
// =============================================================================

type showOptions struct {
	Limit int
	Raw   bool
	JSON  bool
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withHistory(cmd, func(h *storage.History) error {
				msgs := h.Load(cmd.Context())
				if opts.Limit > 0 && len(msgs) > opts.Limit {
					msgs = msgs[len(msgs)-opts.Limit:]
				}
				if opts.JSON {
					return writeJSON(cmd.OutOrStdout(), msgs)
				}
				markdown := a.cfg.UI.RenderMarkdown && !opts.Raw && IsStdoutTTY()
				return showMessages(cmd.OutOrStdout(), msgs, a.cfg.UI.Theme, markdown)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "show only the last N messages")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "do not render bot replies as Markdown")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the stored messages as JSON")
	return cmd
}

func showMessages(w io.Writer, msgs []model.Message, theme string, markdown bool) error {
	if len(msgs) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No saved messages."))
		return nil
	}

	var renderer *glamour.TermRenderer
	if markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.NewTheme(theme).GlamourStyle()),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err != nil {
			log.Printf("ui: markdown renderer unavailable: %v", err)
		} else {
			renderer = r
		}
	}

	for _, m := range msgs {
		fmt.Fprintf(w, "%s %s\n", roleLabel(m), DimStyle.Render(m.FormatTime()))

		text := m.Text
		if renderer != nil && m.Role == model.RoleBot {
			if out, err := renderer.Render(text); err == nil {
				text = strings.Trim(out, "\n")
			}
		} else {
			text = WrapText(text, 0)
		}
		fmt.Fprintln(w, text)
		fmt.Fprintln(w)
	}
	return nil
}

func roleLabel(m model.Message) string {
	name := m.Role.DisplayName()
	switch {
	case m.IsError():
		return ErrorStyle.Render(name)
	case m.Role == model.RoleUser:
		return UserLabelStyle.Render(name)
	case m.Role == model.RoleBot:
		return BotLabelStyle.Render(name)
	default:
		return SystemLabelStyle.Render(name)
	}
}

// =============================================================================
// STATS
// =============================================================================

func newHistoryStatsCmd(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show message counts for the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withHistory(cmd, func(h *storage.History) error {
				msgs := h.Load(cmd.Context())
				stats := model.ComputeStats(msgs)
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), stats)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintln(w, TitleStyle.Render("Chat history"))
				fmt.Fprintf(w, "%s%s\n", RenderLabel("Storage"), ValueStyle.Render(h.Slot().Describe()))
				fmt.Fprintf(w, "%s%s\n", RenderLabel("Messages"), ValueStyle.Render(humanize.Comma(int64(stats.Total))))
				fmt.Fprintf(w, "%s%s\n", RenderLabel("  You"), ValueStyle.Render(humanize.Comma(int64(stats.User))))
				fmt.Fprintf(w, "%s%s\n", RenderLabel("  Bot"), ValueStyle.Render(humanize.Comma(int64(stats.Bot))))
				if stats.HasHistory {
					first := msgs[0].Time()
					fmt.Fprintf(w, "%s%s\n", RenderLabel("Started"), ValueStyle.Render(humanize.Time(first)))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print counts as JSON")
	return cmd
}

// =============================================================================
// CLEAR
// =============================================================================

func newHistoryClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := RequireConfirmation(yes, "delete the saved chat history")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("Cancelled."))
				return nil
			}
			return a.withHistory(cmd, func(h *storage.History) error {
				if err := h.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Chat history cleared\n", RenderStatus("ok"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// =============================================================================
// EXPORT
// =============================================================================

type exportOptions struct {
	Format       string
	Output       string
	NoMetadata   bool
	NoTimestamps bool
}

func newHistoryExportCmd(a *app) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved conversation as Markdown or JSON",
		Long: `Export the saved conversation.

Without -o the file is written to the current directory as
chatbot_history_<timestamp>.<ext>. Use -o - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exportOpts := export.DefaultOptions()
			exportOpts.IncludeMetadata = !opts.NoMetadata
			exportOpts.IncludeTimestamps = !opts.NoTimestamps

			exporter, err := export.ForFormat(opts.Format, exportOpts)
			if err != nil {
				return &UsageError{Reason: err.Error(), Example: "chatbot history export --format json"}
			}

			return a.withHistory(cmd, func(h *storage.History) error {
				msgs := h.Load(cmd.Context())

				switch opts.Output {
				case "-":
					return export.Write(cmd.OutOrStdout(), msgs, exporter)
				case "":
					path, err := export.ToFile(msgs, exporter, exportOpts)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d messages to %s\n", RenderStatus("ok"), len(msgs), path)
				default:
					if err := export.WriteFile(opts.Output, msgs, exporter); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d messages to %s\n", RenderStatus("ok"), len(msgs), opts.Output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "md", "output format: md or json")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().BoolVar(&opts.NoMetadata, "no-metadata", false, "omit the Markdown front matter")
	cmd.Flags().BoolVar(&opts.NoTimestamps, "no-timestamps", false, "omit message times")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
