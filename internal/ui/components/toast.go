// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastKindStatus ToastKind = iota
	ToastKindError
	ToastKindWarning
	ToastKindSuccess
)

// DefaultToastDuration is used when a toast is added without a life.
const DefaultToastDuration = chat.DefaultNoticeLife

// ToastTickInterval is how often expired toasts are pruned.
const ToastTickInterval = 250 * time.Millisecond

// Toast is a non-blocking notification shown in the bottom-right corner.
type Toast struct {
	ID        int
	Title     string
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// expired reports whether the toast should be dismissed at now.
func (t Toast) expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// remaining returns the time left before auto-dismiss at now.
func (t Toast) remaining(now time.Time) time.Duration {
	return max(0, t.Duration-now.Sub(t.CreatedAt))
}

// kindOf maps a notice severity to a toast kind.
func kindOf(s chat.Severity) ToastKind {
	switch s {
	case chat.SeverityError:
		return ToastKindError
	case chat.SeverityWarning:
		return ToastKindWarning
	default:
		return ToastKindStatus
	}
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the visible toasts. It is safe for concurrent use and
// implements chat.ErrorSink.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
	now       func() time.Time
}

var _ chat.ErrorSink = (*ToastManager)(nil)

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{
		nextID:    1,
		maxToasts: 5,
		now:       time.Now,
	}
}

// Add adds a toast, newest first, and returns its id.
func (m *ToastManager) Add(toast Toast) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if toast.ID == 0 {
		toast.ID = m.nextID
		m.nextID++
	}
	if toast.CreatedAt.IsZero() {
		toast.CreatedAt = m.now()
	}
	if toast.Duration <= 0 {
		toast.Duration = DefaultToastDuration
	}

	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return toast.ID
}

// Notify shows a notice reported by the orchestrator.
func (m *ToastManager) Notify(n chat.Notice) {
	m.Add(Toast{
		Title:    n.Title,
		Message:  n.Detail,
		Kind:     kindOf(n.Severity),
		Duration: n.Life,
	})
}

// AddError adds an error toast.
func (m *ToastManager) AddError(message string) int {
	return m.Add(Toast{Message: message, Kind: ToastKindError})
}

// AddStatus adds an informational toast.
func (m *ToastManager) AddStatus(message string) int {
	return m.Add(Toast{Message: message, Kind: ToastKindStatus})
}

// AddSuccess adds a success toast.
func (m *ToastManager) AddSuccess(message string) int {
	return m.Add(Toast{Message: message, Kind: ToastKindSuccess})
}

// Remove removes a toast by id.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissNewest removes the most recent toast.
func (m *ToastManager) DismissNewest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.toasts) == 0 {
		return false
	}
	m.toasts = m.toasts[1:]
	return true
}

// Tick removes expired toasts and returns a copy of the remaining ones.
func (m *ToastManager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.expired(now) {
			active = append(active, toast)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Toasts returns a copy of the current toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// Len returns the number of active toasts.
func (m *ToastManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to prune toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd returns a command that ticks toasts.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(ToastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast.
func (m *ToastManager) RenderToast(theme *styles.Theme, toast Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 24 {
		maxWidth = 24
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch toast.Kind {
	case ToastKindError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastKindWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case ToastKindSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	iconStyle := theme.NewStyle().Foreground(color).Bold(true)
	textWidth := maxWidth - 6
	var lines []string
	if toast.Title != "" {
		lines = append(lines, iconStyle.Render(icon+" "+toast.Title))
		lines = append(lines, theme.NewStyle().Foreground(styles.TextPrimary).Render(wrapText(toast.Message, textWidth)))
	} else {
		lines = append(lines, iconStyle.Render(icon+" ")+
			theme.NewStyle().Foreground(styles.TextPrimary).Render(wrapText(toast.Message, textWidth-util.StringWidth(icon)-1)))
	}

	if secs := int(toast.remaining(m.now()).Seconds()); secs > 0 {
		hint := theme.NewStyle().Foreground(styles.TextMuted).Italic(true)
		lines = append(lines, hint.Render("esc dismiss  "+util.IntToString(secs)+"s"))
	}

	return theme.Toast.
		BorderForeground(color).
		MaxWidth(maxWidth).
		Render(strings.Join(lines, "\n"))
}

// View renders the toast stack, newest at the bottom, or "" when empty.
func (m *ToastManager) View(theme *styles.Theme, width int) string {
	toasts := m.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, m.RenderToast(theme, toasts[i], width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}
