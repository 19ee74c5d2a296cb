// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatbot TUI.

# Color System (colors.go)

Every color is a Pair with a light and a dark variant. Unlike
lipgloss.AdaptiveColor, the variant is chosen by the active theme rather
than by probing the terminal background, so /theme can switch it at runtime.

  - Purple - bot messages, accents
  - Cyan - brand, user highlights
  - Emerald - success, healthy backend
  - Amber - warnings, system notices
  - Rose - errors

# Themes (theme.go)

	theme := styles.NewTheme("dark")
	fmt.Println(theme.UserBubble.Render("hello"))
	theme = theme.Toggle()
*/
package styles
