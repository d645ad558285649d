// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - Command suggestion for typo correction.
package cli

import (
	"strings"
)

// validCommands lists every command name and alias ParseArgs accepts.
var validCommands = []string{
	"tui",
	"chat",
	"login",
	"logout",
	"whoami",
	"history",
	"clear",
	"docs",
	"theme",
	"config",
	"version",
	"help",
	// Aliases
	"repl",      // chat
	"signin",    // login
	"signout",   // logout
	"hist",      // history
	"documents", // docs
}

// SuggestCommand returns the command closest to input, or "" when nothing is
// close enough. The allowed edit distance grows with the input length.
func SuggestCommand(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	maxDistance := 1
	if len(input) > 4 {
		maxDistance = 2
	}
	if len(input) > 7 {
		maxDistance = 3
	}

	best := ""
	bestDistance := maxDistance + 1
	for _, cmd := range validCommands {
		if strings.HasPrefix(cmd, input) && len(input) >= 3 {
			return cmd
		}
		d := levenshteinDistance(input, cmd)
		if d < bestDistance {
			best = cmd
			bestDistance = d
		}
	}
	if bestDistance > maxDistance {
		return ""
	}
	return best
}

// levenshteinDistance counts the single-character edits between s1 and s2.
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}
