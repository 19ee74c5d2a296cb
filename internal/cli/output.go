// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - Colored line output for the plain chat and ask commands.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

var (
	userColor   = color.New(color.FgWhite, color.Bold)
	botColor    = color.New(color.FgCyan)
	systemColor = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
	promptColor = color.New(color.FgHiBlue)
	dimColor    = color.New(color.FgHiBlack)
)

func init() {
	color.NoColor = !ColorsEnabled()
}

// printer writes role-colored text to one stream.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

// Bot writes a fragment of a bot reply without a trailing newline.
func (p *printer) Bot(text string) {
	botColor.Fprint(p.w, text)
}

// System writes a system line.
func (p *printer) System(format string, args ...any) {
	systemColor.Fprintf(p.w, format+"\n", args...)
}

// Error writes an error line.
func (p *printer) Error(text string) {
	errorColor.Fprintln(p.w, text)
}

// Dim writes a de-emphasized line.
func (p *printer) Dim(format string, args ...any) {
	dimColor.Fprintf(p.w, format+"\n", args...)
}

// Newline ends the current line.
func (p *printer) Newline() {
	fmt.Fprintln(p.w)
}

// Message writes a whole message with its role label and time.
func (p *printer) Message(m model.Message) {
	label := fmt.Sprintf("%s [%s]", m.Role.DisplayName(), m.FormatTime())
	switch {
	case m.IsError():
		errorColor.Fprintln(p.w, label)
		errorColor.Fprintln(p.w, m.Text)
	case m.Role == model.RoleUser:
		userColor.Fprintln(p.w, label)
		fmt.Fprintln(p.w, m.Text)
	case m.Role == model.RoleBot:
		dimColor.Fprintln(p.w, label)
		botColor.Fprintln(p.w, strings.TrimRight(m.Text, "\n"))
	default:
		systemColor.Fprintln(p.w, label)
		systemColor.Fprintln(p.w, m.Text)
	}
	fmt.Fprintln(p.w)
}

// Banner writes a highlighted heading line.
func (p *printer) Banner(format string, args ...any) {
	promptColor.Fprintf(p.w, format+"\n", args...)
}
