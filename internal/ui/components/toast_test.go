// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/chat"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestToasts() (*ToastManager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewToastManager()
	m.now = clock.Now
	return m, clock
}

func TestToastManagerNotify(t *testing.T) {
	m, clock := newTestToasts()

	m.Notify(chat.Notice{
		Title:    chat.TitleSend,
		Detail:   "Server error. Try again later.",
		Severity: chat.SeverityError,
		Life:     chat.DefaultNoticeLife,
	})

	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastKindError, toasts[0].Kind)
	assert.Equal(t, chat.TitleSend, toasts[0].Title)
	assert.Equal(t, 5*time.Second, toasts[0].Duration)

	clock.Advance(4999 * time.Millisecond)
	assert.Len(t, m.Tick(), 1)
	clock.Advance(time.Millisecond)
	assert.Empty(t, m.Tick())
}

func TestToastManagerSeverities(t *testing.T) {
	tests := []struct {
		severity chat.Severity
		kind     ToastKind
	}{
		{chat.SeverityError, ToastKindError},
		{chat.SeverityWarning, ToastKindWarning},
		{chat.SeverityInfo, ToastKindStatus},
		{"", ToastKindStatus},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			m, _ := newTestToasts()
			m.Notify(chat.Notice{Detail: "x", Severity: tt.severity})
			require.Equal(t, 1, m.Len())
			assert.Equal(t, tt.kind, m.Toasts()[0].Kind)
			assert.Equal(t, DefaultToastDuration, m.Toasts()[0].Duration, "zero life falls back to the default")
		})
	}
}

func TestToastManagerOrderingAndLimit(t *testing.T) {
	m, _ := newTestToasts()
	var ids []int
	for i := 0; i < 7; i++ {
		ids = append(ids, m.AddStatus("toast"))
	}

	toasts := m.Toasts()
	require.Len(t, toasts, 5)
	assert.Equal(t, ids[6], toasts[0].ID, "newest first")

	m.Remove(ids[6])
	assert.Equal(t, 4, m.Len())
	assert.True(t, m.DismissNewest())
	assert.Equal(t, 3, m.Len())

	m.Clear()
	assert.False(t, m.DismissNewest())
}

func TestToastManagerView(t *testing.T) {
	m, _ := newTestToasts()
	th := testTheme()
	assert.Empty(t, m.View(th, 80))

	m.Notify(chat.NewErrorNotice(chat.TitleHistory, assert.AnError))
	m.AddSuccess("History cleared")

	view := m.View(th, 80)
	assert.Contains(t, view, chat.TitleHistory)
	assert.Contains(t, view, "History cleared")
	assert.Less(t, strings.Index(view, chat.TitleHistory), strings.Index(view, "History cleared"),
		"newest toast renders at the bottom")
}
