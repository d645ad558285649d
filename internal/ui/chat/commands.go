// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/api"
	core "github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/store"
	"github.com/jeranaias/rigchat/internal/theme"
)

// DocumentPageSize is how many documents the picker requests.
const DocumentPageSize = 100

// Backend is the part of the API client used directly by the TUI.
// *api.Client satisfies it.
type Backend interface {
	Login(ctx context.Context, email, password string) (*model.User, error)
	Logout(ctx context.Context) error
	Documents(ctx context.Context, params api.DocumentParams) (*api.DocumentPage, error)
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// WaitStoreCmd waits for the next snapshot in mb.
func WaitStoreCmd(ctx context.Context, mb *store.Mailbox) tea.Cmd {
	return func() tea.Msg {
		snap, ok := mb.Wait(ctx)
		if !ok {
			return nil
		}
		return StoreChangedMsg{Snapshot: snap}
	}
}

// SendCmd sends draft through the orchestrator.
func SendCmd(ctx context.Context, orch *core.Orchestrator, draft model.Draft) tea.Cmd {
	return func() tea.Msg {
		result, err := orch.SendMessage(ctx, draft)
		return SendDoneMsg{Result: result, Err: err}
	}
}

// LoadHistoryCmd loads the most recent history page.
func LoadHistoryCmd(ctx context.Context, orch *core.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return HistoryLoadedMsg{Fetched: true, Err: orch.LoadHistory(ctx)}
	}
}

// RefreshIfStaleCmd reloads history when a send or clear completed since
// the last load.
func RefreshIfStaleCmd(ctx context.Context, orch *core.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		fetched, err := orch.RefreshIfStale(ctx)
		return HistoryLoadedMsg{Fetched: fetched, Err: err}
	}
}

// ClearHistoryCmd clears the remote and local history.
func ClearHistoryCmd(ctx context.Context, orch *core.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		return ClearDoneMsg{Err: orch.ClearHistory(ctx)}
	}
}

// LoginCmd signs in and persists the session.
func LoginCmd(ctx context.Context, backend Backend, sess *session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := backend.Login(ctx, email, password)
		if err != nil {
			log.Printf("LOGIN_FAILED | kind=%s", api.ClassifyAuth(err))
			return LoginDoneMsg{Err: err}
		}
		if err := sess.Init(ctx, user); err != nil {
			log.Printf("SESSION_PERSIST_FAILED | error=%v", err)
		}
		return LoginDoneMsg{User: user}
	}
}

// LogoutCmd signs out remotely and then resets the local session. The
// local session is reset even when the remote call fails.
func LogoutCmd(ctx context.Context, backend Backend, sess *session.Store) tea.Cmd {
	return func() tea.Msg {
		err := backend.Logout(ctx)
		if err != nil {
			log.Printf("LOGOUT_REMOTE_FAILED | kind=%s error=%v", api.KindOf(err), err)
		}
		if rerr := sess.Reset(ctx); rerr != nil {
			log.Printf("SESSION_PERSIST_FAILED | error=%v", rerr)
		}
		return LogoutDoneMsg{Err: err}
	}
}

// DocumentsCmd fetches the first page of the document listing.
func DocumentsCmd(ctx context.Context, backend Backend) tea.Cmd {
	return func() tea.Msg {
		page, err := backend.Documents(ctx, api.DocumentParams{Page: 1, PerPage: DocumentPageSize})
		if err != nil {
			return DocumentsLoadedMsg{Err: err}
		}
		return DocumentsLoadedMsg{Documents: page.Documents}
	}
}

// ToggleThemeCmd flips dark mode and persists the preference.
func ToggleThemeCmd(ctx context.Context, themes *theme.Store) tea.Cmd {
	return func() tea.Msg {
		err := themes.ToggleDark(ctx)
		return ThemeChangedMsg{Pref: themes.Preference(), Err: err}
	}
}

// MarkAnimatedCmd clears the entrance flag of id after delay.
func MarkAnimatedCmd(id model.MessageID, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return MarkAnimatedMsg{ID: id}
	})
}
