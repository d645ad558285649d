// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the canonical chat message list and its display ordering.
//
// The Store is the single mutable shared resource of the chat client. Every
// mutation is applied atomically under the store lock, the derived ordering is
// recomputed in the same critical section, and subscribers are then notified
// with an immutable Snapshot. One mutation produces exactly one notification.
//
// # Key Types
//
//   - Store: Message list, loading/error/typing flags, id generation
//   - Snapshot: Immutable copy of the store state handed to observers
//   - Mailbox: Latest-wins snapshot buffer for event-loop consumers
//
// # Ordering
//
// Sorted() sorts messages by created_at and then walks the list emitting each
// user message immediately followed by its answer: the server-attached replies
// when present, otherwise the first unemitted bot message whose parent is that
// user message. Bot messages that cannot be paired are not emitted.
//
// # Usage
//
//	s := store.New()
//	unsubscribe := s.Subscribe(func(snap store.Snapshot) {
//	    render(snap.Sorted)
//	})
//	defer unsubscribe()
//
//	user := s.CreateLocalUserMessage(model.Draft{Text: "hi"})
//	s.CreateLoadingBotMessage(user.ID)
package store
