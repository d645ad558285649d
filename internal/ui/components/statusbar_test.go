// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStatusStrings(t *testing.T) {
	tests := []struct {
		status Status
		text   string
		icon   string
	}{
		{StatusReady, "Ready", "[OK]"},
		{StatusSending, "Sending...", "[ ]"},
		{StatusLoading, "Loading...", "[ ]"},
		{StatusError, "Error", "[X]"},
		{Status(99), "Unknown", "?"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.text {
			t.Errorf("String() = %q, want %q", got, tt.text)
		}
		if got := tt.status.Icon(); got != tt.icon {
			t.Errorf("Icon() = %q, want %q", got, tt.icon)
		}
	}
}

func TestStatusBarWidths(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.User = "ada@example.com"
	bar.Messages = 12
	bar.Scroll = "blocked"
	bar.Session = "5m 3s"

	bar.SetWidth(120)
	wide := bar.View()
	for _, want := range []string{"Ready", "ada@example.com", "12 msgs", "scroll:blocked", "5m 3s", "quit"} {
		if !strings.Contains(wide, want) {
			t.Errorf("wide bar missing %q: %q", want, wide)
		}
	}
	if w := lipgloss.Width(wide); w != 120 {
		t.Errorf("wide bar width = %d, want 120", w)
	}

	bar.SetWidth(50)
	narrow := bar.View()
	if strings.Contains(narrow, "msgs") || strings.Contains(narrow, "quit") {
		t.Errorf("narrow bar should drop optional segments: %q", narrow)
	}
}
