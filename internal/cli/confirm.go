// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation prompts for destructive commands.
//
// Destructive commands accept --yes. Without it they prompt on a
// terminal and refuse when stdin is piped.

package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// askConfirm shows a yes/no prompt. Tests replace it.
var askConfirm = func(message string) (bool, error) {
	confirmed := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return confirmed, nil
}

// RequireConfirmation returns true when the action may proceed.
// confirmFlag is the value of --yes.
func RequireConfirmation(confirmFlag bool, action string) (bool, error) {
	if confirmFlag {
		return true, nil
	}
	if !CanPrompt() {
		return false, &UsageError{
			Reason:  fmt.Sprintf("confirmation required to %s but stdin is not a terminal; use --yes", action),
			Example: "chatbot history clear --yes",
		}
	}
	return askConfirm(fmt.Sprintf("Are you sure you want to %s?", action))
}
