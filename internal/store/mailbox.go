// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"sync"
)

// Mailbox buffers the most recent Snapshot for a single consumer.
// Put never blocks; a newer snapshot replaces one that was not yet taken.
// Subscribing a Mailbox lets an event loop receive store changes without
// the mutating goroutine waiting on it.
type Mailbox struct {
	mu    sync.Mutex
	snap  Snapshot
	full  bool
	ready chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Put stores snap, replacing any untaken snapshot with an older version.
func (m *Mailbox) Put(snap Snapshot) {
	m.mu.Lock()
	if m.full && m.snap.Version > snap.Version {
		m.mu.Unlock()
		return
	}
	m.snap = snap
	m.full = true
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Take returns the buffered snapshot without waiting.
func (m *Mailbox) Take() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return Snapshot{}, false
	}
	snap := m.snap
	m.snap = Snapshot{}
	m.full = false
	return snap, true
}

// Wait blocks until a snapshot is available or ctx is done.
func (m *Mailbox) Wait(ctx context.Context) (Snapshot, bool) {
	for {
		if snap, ok := m.Take(); ok {
			return snap, true
		}
		select {
		case <-m.ready:
		case <-ctx.Done():
			return Snapshot{}, false
		}
	}
}
