// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	Name   string
	IsDark bool

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble   lipgloss.Style
	BotBubble    lipgloss.Style
	SystemBubble lipgloss.Style
	ErrorBubble  lipgloss.Style
	RoleLabel    lipgloss.Style
	Timestamp    lipgloss.Style
	Cursor       lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	Chip           lipgloss.Style
	ChipIndex      lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar  lipgloss.Style
	StatusOK   lipgloss.Style
	StatusFail lipgloss.Style
	StatusWarn lipgloss.Style
	Spinner    lipgloss.Style
	Muted      lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
	WelcomeBox   lipgloss.Style
	WelcomeTitle lipgloss.Style
	WelcomeInfo  lipgloss.Style
	WelcomeKey   lipgloss.Style
	StatsLabel   lipgloss.Style
	StatsValue   lipgloss.Style
}

// NewTheme creates the named theme. Unknown names fall back to dark.
func NewTheme(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != ThemeLight {
		name = ThemeDark
	}
	t := &Theme{Name: name, IsDark: name == ThemeDark}
	t.initStyles()
	return t
}

// Toggle returns the opposite theme.
func (t *Theme) Toggle() *Theme {
	if t.IsDark {
		return NewTheme(ThemeLight)
	}
	return NewTheme(ThemeDark)
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	c := func(p Pair) lipgloss.Color { return p.Pick(t.IsDark) }

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Cyan)).
		Background(c(SurfaceDim)).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Purple))

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(c(TextSecondary)).
		Italic(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(c(UserBubbleFg)).
		Background(c(UserBubbleBg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c(UserBubbleBorder)).
		Padding(0, 1).
		MarginLeft(4)

	t.BotBubble = lipgloss.NewStyle().
		Foreground(c(BotBubbleFg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c(BotBubbleBorder)).
		Padding(0, 1).
		MarginRight(4)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(c(SystemBubbleFg)).
		Background(c(SystemBubbleBg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(c(SystemBubbleBorder)).
		Padding(0, 1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(c(ErrorBubbleFg)).
		Background(c(ErrorBubbleBg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(c(Rose)).
		BorderLeft(true).
		PaddingLeft(1)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(TextSecondary))

	t.Timestamp = lipgloss.NewStyle().
		Foreground(c(TextMuted))

	t.Cursor = lipgloss.NewStyle().
		Foreground(c(Purple)).
		Blink(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(c(Overlay)).
		Padding(0, 1)

	t.Chip = lipgloss.NewStyle().
		Foreground(c(TextPrimary)).
		Background(c(SurfaceBright)).
		Padding(0, 1).
		MarginRight(1)

	t.ChipIndex = lipgloss.NewStyle().
		Foreground(c(Cyan)).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(c(SurfaceDim)).
		Foreground(c(TextSecondary)).
		Padding(0, 1)

	t.StatusOK = lipgloss.NewStyle().Foreground(c(Emerald)).Bold(true)
	t.StatusFail = lipgloss.NewStyle().Foreground(c(Rose)).Bold(true)
	t.StatusWarn = lipgloss.NewStyle().Foreground(c(Amber))
	t.Spinner = lipgloss.NewStyle().Foreground(c(Purple))
	t.Muted = lipgloss.NewStyle().Foreground(c(TextMuted))

	// Overlays
	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(c(Rose)).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Rose))

	t.WelcomeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c(Purple)).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.WelcomeTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(c(Cyan))

	t.WelcomeInfo = lipgloss.NewStyle().
		Foreground(c(TextSecondary))

	t.WelcomeKey = lipgloss.NewStyle().
		Foreground(c(Purple)).
		Bold(true)

	t.StatsLabel = lipgloss.NewStyle().
		Foreground(c(TextSecondary)).
		Width(18)

	t.StatsValue = lipgloss.NewStyle().
		Foreground(c(TextPrimary)).
		Bold(true)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderSuccess renders a success message with a shape indicator.
func (t *Theme) RenderSuccess(message string) string {
	return t.StatusOK.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with a shape indicator.
func (t *Theme) RenderError(message string) string {
	return t.StatusFail.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning with a shape indicator.
func (t *Theme) RenderWarning(message string) string {
	return t.StatusWarn.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an informational note with a shape indicator.
func (t *Theme) RenderInfo(message string) string {
	return t.Muted.Render(StatusIndicators.Info + " " + message)
}
