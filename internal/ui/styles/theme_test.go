// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rigchat/internal/theme"
)

func TestNewThemeFollowsPreference(t *testing.T) {
	pref := theme.Default()
	pref.Dark = true

	th := NewThemeWithProfile(pref, termenv.Ascii)
	if !th.IsDark {
		t.Error("IsDark should follow the preference")
	}
	if !th.Renderer().HasDarkBackground() {
		t.Error("renderer should report a dark background")
	}
	if th.ColorProfile != termenv.Ascii {
		t.Errorf("ColorProfile = %v, want Ascii", th.ColorProfile)
	}
	if th.GlamourStyle() != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", th.GlamourStyle())
	}

	pref.Dark = false
	light := NewThemeWithProfile(pref, termenv.Ascii)
	if light.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle() = %q, want light", light.GlamourStyle())
	}
}

func TestMarkdownFollowsMode(t *testing.T) {
	pref := theme.Default()
	if !NewThemeWithProfile(pref, termenv.Ascii).Markdown() {
		t.Error("tailwind mode should render markdown")
	}
	pref.Mode = theme.ModeCSS
	if NewThemeWithProfile(pref, termenv.Ascii).Markdown() {
		t.Error("css mode should render plain text")
	}
}

func TestDensityAndRadius(t *testing.T) {
	tests := []struct {
		density string
		padding int
		gap     int
	}{
		{"sm", 0, 0},
		{"md", 1, 1},
		{"lg", 2, 2},
		{"xl", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.density, func(t *testing.T) {
			if got := Padding(tt.density); got != tt.padding {
				t.Errorf("Padding(%q) = %d, want %d", tt.density, got, tt.padding)
			}
			if got := Gap(tt.density); got != tt.gap {
				t.Errorf("Gap(%q) = %d, want %d", tt.density, got, tt.gap)
			}
		})
	}

	borders := map[string]lipgloss.Border{
		"none":    lipgloss.NormalBorder(),
		"sm":      lipgloss.NormalBorder(),
		"md":      lipgloss.RoundedBorder(),
		"lg":      lipgloss.ThickBorder(),
		"unknown": lipgloss.RoundedBorder(),
	}
	for radius, want := range borders {
		if got := Border(radius); got.TopLeft != want.TopLeft {
			t.Errorf("Border(%q).TopLeft = %q, want %q", radius, got.TopLeft, want.TopLeft)
		}
	}
}

func TestBubbleRendersWithBorder(t *testing.T) {
	th := NewThemeWithProfile(theme.Default(), termenv.Ascii)
	out := th.UserBubble.Render("hello")
	if !strings.Contains(out, "hello") {
		t.Fatalf("bubble lost its content: %q", out)
	}
	if !strings.Contains(out, lipgloss.RoundedBorder().TopLeft) {
		t.Errorf("default radius should draw a rounded border: %q", out)
	}
}

func TestStatusRenderHelpers(t *testing.T) {
	th := NewThemeWithProfile(theme.Default(), termenv.Ascii)
	tests := []struct {
		name   string
		render func(string) string
		prefix string
	}{
		{"success", th.RenderSuccess, StatusIndicators.Success},
		{"error", th.RenderError, StatusIndicators.Error},
		{"warning", th.RenderWarning, StatusIndicators.Warning},
		{"info", th.RenderInfo, StatusIndicators.Info},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.render("done")
			if got != tt.prefix+" done" {
				t.Errorf("render = %q, want %q", got, tt.prefix+" done")
			}
		})
	}
}
