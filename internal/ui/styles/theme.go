// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rigchat/internal/theme"
)

// Theme holds all the styled components for the application. Colors resolve
// against the stored dark preference, not the terminal background.
type Theme struct {
	Pref         theme.Preference
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	renderer *lipgloss.Renderer

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	Author          lipgloss.Style
	Timestamp       lipgloss.Style
	LoadingText     lipgloss.Style
	Marker          lipgloss.Style
	NewBadge        lipgloss.Style
	DocChip         lipgloss.Style
	StatusPending   lipgloss.Style

	// ==========================================================================
	// CODE BLOCKS
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	InlineCode    lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusAccent lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// OVERLAYS
	// ==========================================================================

	Toast          lipgloss.Style
	Dialog         lipgloss.Style
	DialogTitle    lipgloss.Style
	DialogLabel    lipgloss.Style
	PickerItem     lipgloss.Style
	PickerSelected lipgloss.Style

	// ==========================================================================
	// SEMANTIC
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	Muted        lipgloss.Style
}

// NewTheme creates a theme for pref, detecting the color profile of stdout.
func NewTheme(pref theme.Preference) *Theme {
	return newTheme(pref, os.Stdout, nil)
}

// NewThemeWithProfile creates a theme rendering with a fixed color profile.
func NewThemeWithProfile(pref theme.Preference, profile termenv.Profile) *Theme {
	return newTheme(pref, io.Discard, &profile)
}

func newTheme(pref theme.Preference, w io.Writer, profile *termenv.Profile) *Theme {
	r := lipgloss.NewRenderer(w)
	if profile != nil {
		r.SetColorProfile(*profile)
	}
	r.SetHasDarkBackground(pref.Dark)

	t := &Theme{
		Pref:         pref,
		IsDark:       pref.Dark,
		ColorProfile: r.ColorProfile(),
		renderer:     r,
	}
	t.HasTrueColor = t.ColorProfile == termenv.TrueColor
	t.initStyles()
	return t
}

// Renderer returns the renderer all styles of the theme are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// NewStyle returns an empty style bound to the theme renderer.
func (t *Theme) NewStyle() lipgloss.Style {
	return t.renderer.NewStyle()
}

// GlamourStyle returns the glamour standard style matching the preference.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// ChromaStyle returns the chroma style used for code blocks.
func (t *Theme) ChromaStyle() string {
	if t.IsDark {
		return "monokai"
	}
	return "github"
}

// Markdown reports whether bot text is rendered as markdown.
func (t *Theme) Markdown() bool {
	return t.Pref.Mode != theme.ModeCSS
}

// Padding returns the horizontal bubble padding for the density preference.
func Padding(density string) int {
	switch density {
	case "sm":
		return 0
	case "lg":
		return 2
	default:
		return 1
	}
}

// Gap returns the number of blank lines between messages for the density
// preference.
func Gap(density string) int {
	switch density {
	case "sm":
		return 0
	case "lg":
		return 2
	default:
		return 1
	}
}

// Border returns the bubble border shape for the radius preference.
func Border(radius string) lipgloss.Border {
	switch radius {
	case "none", "sm":
		return lipgloss.NormalBorder()
	case "lg":
		return lipgloss.ThickBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	ns := t.renderer.NewStyle
	pad := Padding(t.Pref.Density)
	border := Border(t.Pref.Radius)

	// Header
	t.Header = ns().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = ns().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = ns().
		Foreground(TextSecondary).
		Italic(true)

	// Messages
	t.UserBubble = ns().
		Foreground(UserBubbleFg).
		BorderStyle(border).
		BorderForeground(UserBubbleBorder).
		Padding(0, pad)

	t.AssistantBubble = ns().
		Foreground(AssistantBubbleFg).
		BorderStyle(border).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, pad)

	t.ErrorBubble = ns().
		Foreground(ErrorBubbleFg).
		BorderStyle(border).
		BorderForeground(Rose).
		Padding(0, pad)

	t.Author = ns().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = ns().
		Foreground(TextMuted)

	t.LoadingText = ns().
		Foreground(TextSecondary).
		Italic(true)

	t.Marker = ns().
		Foreground(Overlay)

	t.NewBadge = ns().
		Foreground(TextInverse).
		Background(Emerald).
		Bold(true).
		Padding(0, 1)

	t.DocChip = ns().
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusPending = ns().
		Foreground(Amber)

	// Code blocks
	t.CodeBlock = ns().
		Background(SurfaceDim).
		BorderStyle(border).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CodeLangBadge = ns().
		Foreground(TextMuted).
		Background(OverlayDim).
		Padding(0, 1).
		Bold(true)

	t.InlineCode = ns().
		Background(SurfaceDim).
		Foreground(Cyan)

	// Input area
	t.InputContainer = ns().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = ns().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = ns().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = ns().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusAccent = ns().
		Foreground(Cyan).
		Background(SurfaceDim).
		Bold(true)

	t.ShortcutKey = ns().
		Foreground(Purple).
		Background(SurfaceDim).
		Bold(true)

	t.ShortcutDesc = ns().
		Foreground(TextMuted).
		Background(SurfaceDim)

	// Overlays
	t.Toast = ns().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 2)

	t.Dialog = ns().
		BorderStyle(border).
		BorderForeground(Purple).
		Padding(1, 2)

	t.DialogTitle = ns().
		Bold(true).
		Foreground(Purple)

	t.DialogLabel = ns().
		Foreground(TextSecondary)

	t.PickerItem = ns().
		Foreground(TextPrimary)

	t.PickerSelected = ns().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)

	// Semantic
	t.SuccessStyle = ns().Foreground(Emerald).Bold(true)
	t.ErrorStyle = ns().Foreground(Rose).Bold(true)
	t.WarningStyle = ns().Foreground(Amber).Bold(true)
	t.InfoStyle = ns().Foreground(Cyan)
	t.Muted = ns().Foreground(TextMuted)
}

// RenderSuccess renders a success message with its indicator.
func (t *Theme) RenderSuccess(message string) string {
	return t.SuccessStyle.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func (t *Theme) RenderError(message string) string {
	return t.ErrorStyle.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func (t *Theme) RenderWarning(message string) string {
	return t.WarningStyle.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an informational message with its indicator.
func (t *Theme) RenderInfo(message string) string {
	return t.InfoStyle.Render(StatusIndicators.Info + " " + message)
}
