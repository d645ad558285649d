// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/store"
	"github.com/jeranaias/rigchat/internal/theme"
)

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg delivers the latest store snapshot.
type StoreChangedMsg struct {
	Snapshot store.Snapshot
}

// MarkAnimatedMsg clears the entrance flag of a message once it was shown.
type MarkAnimatedMsg struct {
	ID model.MessageID
}

// =============================================================================
// EVENT MESSAGES
// =============================================================================

// eventMsg wraps a message read from Events so the listener is re-armed.
type eventMsg struct {
	msg tea.Msg
}

// ConfigReloadedMsg reports a hot reload of the config file.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// SessionChangedMsg reports a sign-in or sign-out.
type SessionChangedMsg struct {
	User *model.User
}

// ThemeChangedMsg carries the stored preference after a theme change.
type ThemeChangedMsg struct {
	Pref theme.Preference
	Err  error
}

// =============================================================================
// API RESULT MESSAGES
// =============================================================================

// SendDoneMsg reports the end of a send.
type SendDoneMsg struct {
	Result *api.SendResult
	Err    error
}

// HistoryLoadedMsg reports a history load. Fetched is false when a
// conditional refresh found nothing stale.
type HistoryLoadedMsg struct {
	Fetched bool
	Err     error
}

// ClearDoneMsg reports the end of a history clear.
type ClearDoneMsg struct {
	Err error
}

// LoginDoneMsg reports a login attempt.
type LoginDoneMsg struct {
	User *model.User
	Err  error
}

// LogoutDoneMsg reports the end of a sign-out.
type LogoutDoneMsg struct {
	Err error
}

// DocumentsLoadedMsg delivers the document listing for the picker.
type DocumentsLoadedMsg struct {
	Documents []model.Document
	Err       error
}
