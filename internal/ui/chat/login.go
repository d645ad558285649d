// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

// loginForm collects the credentials on the sign-in screen.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	err      string
}

func newLoginForm() *loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email    "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128

	f := &loginForm{email: email, password: password}
	f.setFocus(0)
	return f
}

func (f *loginForm) setFocus(i int) tea.Cmd {
	f.focus = i
	if i == 0 {
		f.password.Blur()
		return f.email.Focus()
	}
	f.email.Blur()
	return f.password.Focus()
}

func (f *loginForm) setWidth(width int) {
	w := max(10, width-12)
	f.email.Width = w
	f.password.Width = w
}

// reset clears the password and any error, keeping the email.
func (f *loginForm) reset() tea.Cmd {
	f.busy = false
	f.err = ""
	f.password.SetValue("")
	if strings.TrimSpace(f.email.Value()) == "" {
		return f.setFocus(0)
	}
	return f.setFocus(1)
}

// credentials returns the trimmed email and the raw password.
func (f *loginForm) credentials() (string, string) {
	return strings.TrimSpace(f.email.Value()), f.password.Value()
}

// update handles a key. submit is true when the form should be sent.
func (f *loginForm) update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	if f.busy {
		return nil, false
	}
	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		return f.setFocus(1 - f.focus), false
	case "enter":
		email, password := f.credentials()
		switch {
		case f.focus == 0 && password == "":
			return f.setFocus(1), false
		case email == "" || password == "":
			f.err = "Email and password are required."
			return nil, false
		}
		f.err = ""
		f.busy = true
		return nil, true
	}

	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd, false
}

func (f *loginForm) view(t *styles.Theme, width, height int, baseURL string) string {
	lines := []string{
		t.DialogTitle.Render("Sign in to rigchat"),
		t.Muted.Render(baseURL),
		"",
		f.email.View(),
		f.password.View(),
		"",
	}
	switch {
	case f.busy:
		lines = append(lines, t.RenderInfo("Signing in..."))
	case f.err != "":
		lines = append(lines, t.RenderError(f.err))
	default:
		lines = append(lines, t.Muted.Render("tab switch field  enter sign in  ctrl+c quit"))
	}

	box := t.Dialog.Width(min(60, max(30, width-4))).Render(strings.Join(lines, "\n"))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
