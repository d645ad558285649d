// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/scroll"
)

// DefaultEventBuffer is the capacity of the event queue.
const DefaultEventBuffer = 64

// =============================================================================
// EVENTS
// =============================================================================

// Events carries messages from background goroutines (timers, the config
// watcher, session changes) into the program. The model keeps one Listen
// command pending at all times.
type Events struct {
	ctx context.Context
	ch  chan tea.Msg
}

// NewEvents creates a queue that stops delivering when ctx is done.
func NewEvents(ctx context.Context, size int) *Events {
	if size < 1 {
		size = DefaultEventBuffer
	}
	return &Events{ctx: ctx, ch: make(chan tea.Msg, size)}
}

// Send queues msg. It blocks while the queue is full and reports false once
// the context is done. Never call it from Update.
func (e *Events) Send(msg tea.Msg) bool {
	select {
	case e.ch <- msg:
		return true
	case <-e.ctx.Done():
		return false
	}
}

// Listen returns a command that waits for the next queued message.
func (e *Events) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-e.ch:
			return eventMsg{msg: msg}
		case <-e.ctx.Done():
			return nil
		}
	}
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler is a scroll.Scheduler whose callbacks run inside Update. The
// delay elapses on a runtime timer and the callback then travels through
// Events as a TimerFiredMsg, so the choreographer only ever touches the
// viewport from the program goroutine.
type Scheduler struct {
	events *Events
}

var _ scroll.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler that delivers through events.
func NewScheduler(events *Events) *Scheduler {
	return &Scheduler{events: events}
}

// AfterFunc implements scroll.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) scroll.Timer {
	t := &teaTimer{fn: f}
	t.timer = time.AfterFunc(d, func() {
		if t.stopped.Load() {
			return
		}
		s.events.Send(TimerFiredMsg{timer: t})
	})
	return t
}

type teaTimer struct {
	timer   *time.Timer
	fn      func()
	stopped atomic.Bool
	ran     atomic.Bool
}

// Stop implements scroll.Timer. A timer whose message is already queued
// still counts as pending and will not run.
func (t *teaTimer) Stop() bool {
	t.timer.Stop()
	if t.ran.Load() {
		return false
	}
	return !t.stopped.Swap(true)
}

// TimerFiredMsg carries a due scheduler callback.
type TimerFiredMsg struct {
	timer *teaTimer
}

// Run invokes the callback unless its timer was stopped. It reports
// whether the callback ran.
func (m TimerFiredMsg) Run() bool {
	t := m.timer
	if t == nil || t.stopped.Load() || !t.ran.CompareAndSwap(false, true) {
		return false
	}
	t.fn()
	return true
}
