// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation for destructive commands.

package cli

import (
	"fmt"
	"os"
	"strings"
)

// RequireConfirmation asks before a destructive action.
//
// With --yes it proceeds without asking. In JSON mode, or when stdin is not
// a terminal, --yes is required and an error is returned without it.
//
//	ok, err := RequireConfirmation(p.BoolFlag("yes", "y"), "clear the whole chat history", args.JSON)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return ErrCancelled
//	}
func RequireConfirmation(confirmFlag bool, action string, jsonMode bool) (bool, error) {
	if confirmFlag {
		return true, nil
	}
	if jsonMode {
		return false, fmt.Errorf("confirmation required: pass --yes to %s in JSON mode", action)
	}
	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; pass --yes")
	}
	return PromptYesNo(fmt.Sprintf("Are you sure you want to %s?", action)), nil
}

// PromptYesNo asks a yes/no question. Anything but y or yes is no, and so is
// a non-interactive stdin.
func PromptYesNo(question string) bool {
	if !IsTTY() {
		return false
	}
	answer, err := PromptLine(question + " [y/N]: ")
	if err != nil {
		fmt.Fprintln(os.Stderr)
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
