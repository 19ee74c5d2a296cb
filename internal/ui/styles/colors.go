// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Pair holds the light and dark variants of one color token.
type Pair struct {
	Light string
	Dark  string
}

// Pick returns the variant for the given theme darkness.
func (p Pair) Pick(dark bool) lipgloss.Color {
	if dark {
		return lipgloss.Color(p.Dark)
	}
	return lipgloss.Color(p.Light)
}

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

var (
	Purple  = Pair{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = Pair{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = Pair{Light: "#059669", Dark: "#34D399"}
)

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

var (
	Rose  = Pair{Light: "#E11D48", Dark: "#FB7185"}
	Amber = Pair{Light: "#D97706", Dark: "#FBBF24"}
)

// =============================================================================
// SURFACE COLORS
// =============================================================================

var (
	Surface       = Pair{Light: "#FFFFFF", Dark: "#1E1E2E"}
	SurfaceDim    = Pair{Light: "#F5F5F5", Dark: "#181825"}
	SurfaceBright = Pair{Light: "#FAFAFA", Dark: "#313244"}
	Overlay       = Pair{Light: "#E5E5E5", Dark: "#313244"}
)

// =============================================================================
// TEXT COLORS
// =============================================================================

var (
	TextPrimary   = Pair{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = Pair{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = Pair{Light: "#9CA3AF", Dark: "#6C7086"}
	TextInverse   = Pair{Light: "#FFFFFF", Dark: "#1E1E2E"}
)

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Blue tones
var (
	UserBubbleBg     = Pair{Light: "#DBEAFE", Dark: "#1D4ED8"}
	UserBubbleFg     = Pair{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder = Pair{Light: "#3B82F6", Dark: "#3B82F6"}
)

// Bot message bubble - muted violet
var (
	BotBubbleBg     = Pair{Light: "#F5F3FF", Dark: "#3B3655"}
	BotBubbleFg     = Pair{Light: "#5B4B8A", Dark: "#E9E4F5"}
	BotBubbleBorder = Pair{Light: "#C4B5FD", Dark: "#A78BFA"}
)

// System notices - amber, errors - rose
var (
	SystemBubbleBg     = Pair{Light: "#FEF3C7", Dark: "#78350F"}
	SystemBubbleFg     = Pair{Light: "#92400E", Dark: "#FEF3C7"}
	SystemBubbleBorder = Pair{Light: "#F59E0B", Dark: "#F59E0B"}
	ErrorBubbleBg      = Pair{Light: "#FEE2E2", Dark: "#881337"}
	ErrorBubbleFg      = Pair{Light: "#991B1B", Dark: "#FECACA"}
)

// =============================================================================
// ACCESSIBILITY
// =============================================================================

// StatusIndicatorSet contains text indicators that do not rely on color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
}

// StatusIndicators are ASCII-only for maximum compatibility.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}
