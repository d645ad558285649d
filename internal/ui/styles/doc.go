// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the rigchat TUI.

All colors use Lip Gloss AdaptiveColor. They resolve against the dark flag
of the stored appearance preference, so toggling dark mode re-themes the
whole screen without querying the terminal.

# Color System (colors.go)

  - Purple - Assistant messages and selections
  - Cyan - Brand color, user highlights and info
  - Emerald - Success states and the new-message badge
  - Amber - Pending states and warnings
  - Rose - Errors

# Theme System (theme.go)

A Theme is built from a theme.Preference:

  - Dark selects the light or dark side of every adaptive color
  - Density sets bubble padding (Padding) and message spacing (Gap)
  - Radius sets the bubble border shape (Border)
  - Mode selects markdown (tailwind) or plain text (css) rendering

# Usage

	t := styles.NewTheme(prefs.Preference())
	line := t.RenderError("send failed")
	md, _ := glamour.NewTermRenderer(glamour.WithStandardStyle(t.GlamourStyle()))
*/
package styles
