// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/api"
	core "github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/ui/components"
	"github.com/jeranaias/rigchat/internal/util"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.relayout()

	case eventMsg:
		next, cmd := m.Update(msg.msg)
		return next, tea.Batch(cmd, m.deps.Events.Listen())

	case TimerFiredMsg:
		if msg.Run() {
			return m, m.viewport.AnimationCmd()
		}
		return m, nil

	case components.ScrollFrameMsg:
		cmd, _ := m.viewport.Update(msg)
		return m, cmd

	case StoreChangedMsg:
		return m.handleStoreChanged(msg)

	case MarkAnimatedMsg:
		delete(m.animating, msg.ID)
		m.deps.Orchestrator.Store().MarkMessageAsAnimated(msg.ID)
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case SessionChangedMsg:
		return m.handleSessionChanged(msg)

	case ThemeChangedMsg:
		if msg.Err != nil {
			log.Printf("THEME_PERSIST_FAILED | error=%v", msg.Err)
		}
		return m, m.applyTheme(msg.Pref)

	case SendDoneMsg:
		m.sending = false
		if msg.Err != nil {
			return m, nil
		}
		return m, RefreshIfStaleCmd(m.ctx, m.deps.Orchestrator)

	case HistoryLoadedMsg:
		if msg.Fetched && msg.Err == nil {
			log.Printf("TUI_HISTORY | messages=%d", len(m.snap.Sorted))
		}
		return m, nil

	case ClearDoneMsg:
		if msg.Err == nil {
			m.deps.Toasts.AddSuccess("History cleared")
			return m, RefreshIfStaleCmd(m.ctx, m.deps.Orchestrator)
		}
		return m, nil

	case LoginDoneMsg:
		return m.handleLoginDone(msg)

	case LogoutDoneMsg:
		if msg.Err != nil {
			m.deps.Toasts.AddStatus("Signed out locally")
		}
		return m, nil

	case DocumentsLoadedMsg:
		if msg.Err != nil {
			m.picker.SetError(core.Describe(msg.Err))
			return m, nil
		}
		m.picker.SetDocuments(msg.Documents)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.renderer.SetSpinnerFrame(m.spinner.View())
		if hasLoading(m.snap.Sorted) {
			m.rerender()
		}
		return m, cmd

	case components.ToastTickMsg:
		m.deps.Toasts.Tick()
		return m, components.ToastTickCmd()

	case session.TickMsg:
		m.refreshStatus()
		return m, session.TickCmd()

	case tea.MouseMsg:
		if m.screen != ScreenChat || m.pickerOpen {
			return m, nil
		}
		return m, m.userScroll(msg)

	case tea.KeyMsg:
		m.deps.Activity.RecordActivity()
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.screen == ScreenLogin {
			return m.handleLoginKey(msg)
		}
		return m.handleChatKey(msg)
	}

	return m, nil
}

// =============================================================================
// STORE CHANGES
// =============================================================================

// handleStoreChanged renders a new snapshot. The choreographer records the
// bottom position before the content changes, observes the transition once
// the new blocks are laid out, and then follows growing content.
func (m Model) handleStoreChanged(msg StoreChangedMsg) (tea.Model, tea.Cmd) {
	prev := m.snap
	m.snap = msg.Snapshot

	m.chor.Sync()
	m.rerender()
	m.chor.Observe(prev.Sorted, m.snap.Sorted)
	m.chor.ContentResized()
	m.refreshStatus()

	cmds := []tea.Cmd{WaitStoreCmd(m.ctx, m.deps.Mailbox), m.viewport.AnimationCmd()}
	for _, msg := range m.snap.Sorted {
		if msg.IsNew && !m.animating[msg.ID] {
			m.animating[msg.ID] = true
			cmds = append(cmds, MarkAnimatedCmd(msg.ID, AnimationDelay))
		}
	}
	return m, tea.Batch(cmds...)
}

func hasLoading(list []model.Message) bool {
	for _, msg := range list {
		if msg.Status == model.StatusLoading {
			return true
		}
	}
	return false
}

// =============================================================================
// EVENTS
// =============================================================================

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.deps.Toasts.Add(components.Toast{
			Title:   "Config",
			Message: "Reload failed: " + msg.Err.Error(),
			Kind:    components.ToastKindWarning,
		})
		return m, nil
	}
	m.cfg = msg.Config
	m.chor.SetOptions(msg.Config.Scroll.Options())
	log.Printf("CONFIG_APPLIED | smooth=%t narrow_width=%d", msg.Config.Scroll.Smooth, msg.Config.Scroll.NarrowWidth)
	m.deps.Toasts.AddStatus("Configuration reloaded")
	return m, m.relayout()
}

func (m Model) handleSessionChanged(msg SessionChangedMsg) (tea.Model, tea.Cmd) {
	m.refreshStatus()
	switch {
	case msg.User.Authenticated() && m.screen == ScreenLogin:
		return m.enterChat()
	case !msg.User.Authenticated() && m.screen == ScreenChat:
		return m.enterLogin()
	}
	return m, nil
}

func (m Model) enterChat() (tea.Model, tea.Cmd) {
	m.screen = ScreenChat
	m.login.reset()
	m.login.email.Blur()
	m.login.password.Blur()
	log.Printf("TUI_SCREEN | screen=chat")
	return m, tea.Batch(m.input.Focus(), LoadHistoryCmd(m.ctx, m.deps.Orchestrator))
}

// enterLogin drops the local conversation of the signed-out user.
func (m Model) enterLogin() (tea.Model, tea.Cmd) {
	m.screen = ScreenLogin
	m.pickerOpen = false
	m.confirmClear = false
	m.showHelp = false
	m.sending = false
	m.input.Blur()
	m.input.Reset()
	m.picker.ClearSelection()
	m.deps.Orchestrator.Store().ClearMessages()
	m.deps.Toasts.AddStatus("Signed out. Please sign in.")
	log.Printf("TUI_SCREEN | screen=login")
	return m, m.login.reset()
}

func (m Model) handleLoginDone(msg LoginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.login.busy = false
		m.login.err = api.DescribeAuth(msg.Err)
		m.login.password.SetValue("")
		return m, m.login.setFocus(1)
	}
	if m.screen == ScreenLogin {
		return m.enterChat()
	}
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, submit := m.login.update(msg)
	if !submit {
		return m, cmd
	}
	email, password := m.login.credentials()
	return m, LoginCmd(m.ctx, m.deps.Backend, m.deps.Session, email, password)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}
	if m.confirmClear {
		m.confirmClear = false
		if msg.String() == "y" || msg.String() == "Y" {
			return m, ClearHistoryCmd(m.ctx, m.deps.Orchestrator)
		}
		return m, nil
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Dismiss) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		return m.submit()
	case key.Matches(msg, m.keys.Newline):
		m.input.InsertString("\n")
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.confirmClear = true
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, LoadHistoryCmd(m.ctx, m.deps.Orchestrator)
	case key.Matches(msg, m.keys.Theme):
		return m, ToggleThemeCmd(m.ctx, m.deps.Themes)
	case key.Matches(msg, m.keys.Docs):
		m.pickerOpen = true
		m.picker.SetLoading(true)
		return m, tea.Batch(m.picker.Open(), DocumentsCmd(m.ctx, m.deps.Backend))
	case key.Matches(msg, m.keys.Dismiss):
		m.deps.Toasts.DismissNewest()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		return m, LogoutCmd(m.ctx, m.deps.Backend, m.deps.Session)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case m.keys.scrollKey(msg.String()):
		return m, m.userScroll(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, action := m.picker.Update(msg)
	switch action {
	case components.PickerDone:
		m.pickerOpen = false
		if n := len(m.picker.Selected()); n > 0 {
			m.deps.Toasts.AddStatus(util.IntToString(n) + " document(s) attached")
		}
	case components.PickerCancel:
		m.pickerOpen = false
	}
	return m, cmd
}

// userScroll forwards a scroll key or wheel event to the viewport and
// tells the choreographer when the user moved it.
func (m Model) userScroll(msg tea.Msg) tea.Cmd {
	cmd, moved := m.viewport.Update(msg)
	if moved {
		m.chor.UserScrolled()
		m.status.Position = m.viewport.ScrollPosition()
	}
	return cmd
}

// submit sends the composed text with the attached documents. Nothing is
// sent while a previous message is still awaiting its reply.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := util.NormalizeInput(m.input.Value())
	docs := m.picker.Selected()
	if text == "" && len(docs) == 0 {
		return m, nil
	}
	if m.sending {
		m.deps.Toasts.Add(components.Toast{Message: "Wait for the current reply", Kind: components.ToastKindWarning})
		return m, nil
	}

	draft := model.Draft{Text: text, Documents: docs}
	m.sending = true
	m.input.Reset()
	m.picker.ClearSelection()
	m.deps.Activity.RecordSend()
	m.refreshStatus()
	return m, SendCmd(m.ctx, m.deps.Orchestrator, draft)
}
