// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll decides when and where the message viewport scrolls.
//
// The Choreographer observes changes of the display sequence and moves a
// Viewport in response. A freshly sent message is brought to the bottom edge
// once the burst of store updates settles. A newly arrived answer pins the
// question that caused it to the top edge, and generic follow-the-content
// scrolling stays suppressed for a short window so the two do not fight.
//
// Every delay goes through a Scheduler so the choreography can be driven by
// a fake clock in tests or by the UI event loop in production.
//
// # State Machine
//
//	Idle -> PendingFirstScroll -> Idle
//	Idle -> PendingReplyBlock -> Blocked -> Idle
//
// Blocking() is true in PendingReplyBlock and Blocked.
//
// # Key Types
//
//   - Choreographer: Reactions and scroll primitives
//   - Viewport: Scroll container implemented by the UI
//   - Scheduler: Delay source (time.AfterFunc or an event loop)
//   - Locator: Selector or Marker anchor for ScrollToElement
//
// # Usage
//
//	c := scroll.New(vp, scroll.NewTimerScheduler(), scroll.DefaultOptions())
//	defer c.Close()
//	c.Observe(prev.Sorted, snap.Sorted)
package scroll
