// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// View renders the active screen.
func (m Model) View() string {
	if m.screen == ScreenLogin {
		return m.overlayToasts(m.login.view(m.theme, m.width, m.height, m.deps.BaseURL))
	}
	return m.renderChat()
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

func (m Model) renderChat() string {
	body := m.viewport.View()
	switch {
	case m.pickerOpen:
		body = m.center(m.picker.View())
	case m.showHelp:
		body = m.center(m.theme.Dialog.Render(
			m.theme.DialogTitle.Render("Keys") + "\n\n" + m.help.View(m.keys)))
	case len(m.snap.Sorted) == 0:
		body = m.center(m.renderEmpty())
	}
	body = m.overlayToasts(body)

	m.refreshStatus()
	return strings.Join([]string{
		m.renderHeader(),
		body,
		m.renderContextLine(),
		m.theme.InputContainer.Width(m.width).Render(m.input.View()),
		m.status.View(),
	}, "\n")
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.HeaderTitle.Render("rigchat")
	var sub string
	if m.deps.Session != nil {
		if name := m.deps.Session.User().DisplayName(); name != "" {
			sub = t.HeaderSubtitle.Render("  " + name)
		}
	}
	mode := t.HeaderSubtitle.Render(string(m.pref.Mode))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(sub) - lipgloss.Width(mode) - 2
	if gap < 1 {
		return t.Header.Width(m.width).MaxWidth(m.width).Render(title + sub)
	}
	return t.Header.Width(m.width).Render(title + sub + strings.Repeat(" ", gap) + mode)
}

func (m Model) renderEmpty() string {
	t := m.theme
	if m.snap.Loading {
		return t.Muted.Render(m.spinner.View() + " Loading history...")
	}
	return t.Muted.Render("No messages yet. Say hello.")
}

// renderContextLine shows, in order of priority, the clear confirmation,
// the attached documents or the scroll indicator.
func (m Model) renderContextLine() string {
	t := m.theme
	if m.confirmClear {
		return t.RenderWarning("Clear the whole history? y/N")
	}
	if docs := m.picker.Selected(); len(docs) > 0 {
		chips := make([]string, 0, len(docs))
		for _, d := range docs {
			chips = append(chips, t.DocChip.Render(util.TruncateWidth(d.DisplayLabel(), 24)))
		}
		line := t.Muted.Render("attached ") + strings.Join(chips, " ")
		return t.NewStyle().MaxWidth(m.width).Render(line)
	}
	if ind := m.viewport.IndicatorView(); ind != "" {
		return ind
	}
	return ""
}

// center places s in the middle of the viewport area.
func (m Model) center(s string) string {
	return lipgloss.Place(m.width, m.viewport.ClientHeight(), lipgloss.Center, lipgloss.Center, s)
}

// overlayToasts replaces the bottom lines of body with the toast stack.
func (m Model) overlayToasts(body string) string {
	stack := m.deps.Toasts.View(m.theme, m.width)
	if stack == "" {
		return body
	}
	return overlayBottom(body, stack)
}

func overlayBottom(base, top string) string {
	lines := strings.Split(base, "\n")
	over := strings.Split(top, "\n")
	if len(over) > len(lines) {
		over = over[len(over)-len(lines):]
	}
	copy(lines[len(lines)-len(over):], over)
	return strings.Join(lines, "\n")
}

// Theme returns the active theme.
func (m Model) Theme() *styles.Theme {
	return m.theme
}
