// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusLoading
	StatusError
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusSending, StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status line.
type StatusBar struct {
	User     string
	Status   Status
	Messages int
	Session  string
	Scroll   string
	Position string
	Width    int
	theme    *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetTheme replaces the theme.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// SetWidth sets the available width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar, dropping segments on narrow terminals.
func (s *StatusBar) View() string {
	t := s.theme
	sep := t.StatusBar.Render("|")

	left := []string{s.statusStyle().Render(s.Status.Icon() + " " + s.Status.String())}
	if s.User != "" {
		left = append(left, t.StatusAccent.Render(util.TruncateWidth(s.User, 24)))
	}
	if s.Width >= 60 {
		left = append(left, t.StatusBar.Render(util.IntToString(s.Messages)+" msgs"))
	}
	if s.Width >= 80 && s.Scroll != "" {
		left = append(left, t.StatusBar.Render("scroll:"+s.Scroll))
	}
	if s.Width >= 100 && s.Session != "" {
		left = append(left, t.StatusBar.Render(s.Session))
	}
	leftText := strings.Join(left, sep)

	var right []string
	if s.Position != "" {
		right = append(right, t.StatusBar.Render(s.Position))
	}
	if s.Width >= 60 {
		right = append(right, s.renderShortcuts())
	}
	rightText := strings.Join(right, sep)

	gap := s.Width - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	if gap < 1 {
		return t.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(leftText)
	}
	return leftText + t.StatusBar.Padding(0).Render(strings.Repeat(" ", gap)) + rightText
}

func (s *StatusBar) renderShortcuts() string {
	t := s.theme
	pairs := [][2]string{{"^T", "theme"}, {"^L", "clear"}, {"^C", "quit"}}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, t.ShortcutKey.Render(p[0])+t.ShortcutDesc.Render(" "+p[1]))
	}
	return strings.Join(out, t.ShortcutDesc.Render(" "))
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	t := s.theme
	switch s.Status {
	case StatusReady:
		return t.SuccessStyle.Background(styles.SurfaceDim).Padding(0, 1)
	case StatusSending, StatusLoading:
		return t.WarningStyle.Background(styles.SurfaceDim).Padding(0, 1)
	case StatusError:
		return t.ErrorStyle.Background(styles.SurfaceDim).Padding(0, 1)
	default:
		return t.StatusBar
	}
}
