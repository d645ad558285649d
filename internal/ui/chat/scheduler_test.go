// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextEvent waits for the next queued message, failing after two seconds.
func nextEvent(t *testing.T, events *Events) tea.Msg {
	t.Helper()
	got := make(chan tea.Msg, 1)
	go func() { got <- events.Listen()() }()
	select {
	case msg := <-got:
		ev, ok := msg.(eventMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return ev.msg
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
		return nil
	}
}

func TestSchedulerDeliversThroughEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := NewEvents(ctx, 4)
	sched := NewScheduler(events)

	ran := 0
	sched.AfterFunc(time.Millisecond, func() { ran++ })

	fired, ok := nextEvent(t, events).(TimerFiredMsg)
	require.True(t, ok)
	assert.Equal(t, 0, ran, "callback must wait for Update")

	assert.True(t, fired.Run())
	assert.Equal(t, 1, ran)
	assert.False(t, fired.Run(), "a callback runs once")
	assert.Equal(t, 1, ran)
}

func TestSchedulerStopAfterQueued(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := NewEvents(ctx, 4)

	ran := false
	timer := NewScheduler(events).AfterFunc(time.Millisecond, func() { ran = true })
	fired := nextEvent(t, events).(TimerFiredMsg)

	assert.True(t, timer.Stop(), "a queued callback is still pending")
	assert.False(t, fired.Run())
	assert.False(t, ran)
	assert.False(t, timer.Stop())
}

func TestSchedulerStopBeforeFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := NewEvents(ctx, 4)

	timer := NewScheduler(events).AfterFunc(time.Hour, func() {})
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
}

func TestSchedulerStopAfterRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := NewEvents(ctx, 4)

	timer := NewScheduler(events).AfterFunc(time.Millisecond, func() {})
	fired := nextEvent(t, events).(TimerFiredMsg)
	require.True(t, fired.Run())
	assert.False(t, timer.Stop(), "a callback that ran is no longer pending")
}

func TestEventsStopWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events := NewEvents(ctx, 1)

	require.True(t, events.Send(SessionChangedMsg{}))
	cancel()
	assert.False(t, events.Send(SessionChangedMsg{}), "full queue with a done context")

	// The queued message is still delivered or the listener gives up; it
	// never blocks.
	done := make(chan struct{})
	go func() {
		events.Listen()()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Listen blocked after cancel")
	}
}
