// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// ACTIVITY
// =============================================================================

// Activity tracks the process session: its id, when it started and when the
// user last did something.
type Activity struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time
	sent         int

	now func() time.Time
}

// NewActivity starts tracking a new process session.
func NewActivity() *Activity {
	return newActivity(time.Now)
}

func newActivity(now func() time.Time) *Activity {
	t := now()
	return &Activity{
		sessionID:    uuid.NewString(),
		startTime:    t,
		lastActivity: t,
		now:          now,
	}
}

// SessionID returns the process session id.
func (a *Activity) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// RecordActivity updates the last activity timestamp.
// Call it on user input.
func (a *Activity) RecordActivity() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastActivity = a.now()
}

// RecordSend counts a sent message and records activity.
func (a *Activity) RecordSend() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent++
	a.lastActivity = a.now()
}

// Status is a point-in-time view of the process session.
type Status struct {
	SessionID string
	StartTime time.Time
	Duration  time.Duration
	IdleTime  time.Duration
	Sent      int
}

// GetStatus returns the current status.
func (a *Activity) GetStatus() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	return Status{
		SessionID: a.sessionID,
		StartTime: a.startTime,
		Duration:  now.Sub(a.startTime),
		IdleTime:  now.Sub(a.lastActivity),
		Sent:      a.sent,
	}
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to refresh the status bar.
type TickMsg struct {
	Time time.Time
}

// TickCmd returns a command that ticks once per second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// FormatDuration returns a compact human-readable duration.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return util.IntToString(mins) + "m"
		}
		return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return util.IntToString(hours) + "h"
	}
	return util.IntToString(hours) + "h " + util.IntToString(mins) + "m"
}
