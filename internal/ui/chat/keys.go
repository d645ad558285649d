// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the chat screen.
// It satisfies help.KeyMap.
type KeyMap struct {
	Send     key.Binding
	Newline  key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	LineUp   key.Binding
	LineDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Clear    key.Binding
	Refresh  key.Binding
	Theme    key.Binding
	Docs     key.Binding
	Dismiss  key.Binding
	Logout   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("M-Enter", "newline"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "pgdn"),
			key.WithHelp("PgDn", "page down"),
		),
		LineUp: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("C-Up", "line up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("ctrl+down"),
			key.WithHelp("C-Down", "line down"),
		),
		Top: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("C-Home", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("C-End", "go to bottom"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear history"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "refresh"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "toggle dark"),
		),
		Docs: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "attach documents"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "dismiss"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "sign out"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "ctrl+g"),
			key.WithHelp("F1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Docs, k.Help, k.Quit}
}

// FullHelp returns the bindings of the help overlay, grouped in columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PageUp, k.PageDown, k.LineUp, k.LineDown, k.Top, k.Bottom},
		{k.Send, k.Newline, k.Docs, k.Dismiss},
		{k.Clear, k.Refresh, k.Theme, k.Logout},
		{k.Help, k.Quit},
	}
}

// scrollKey reports whether msg is one of the viewport scroll bindings.
func (k KeyMap) scrollKey(msg string) bool {
	for _, b := range []key.Binding{k.PageUp, k.PageDown, k.LineUp, k.LineDown, k.Top, k.Bottom} {
		for _, s := range b.Keys() {
			if s == msg {
				return true
			}
		}
	}
	return false
}
