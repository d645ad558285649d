// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea model of the rigchat TUI.

The model owns no conversation state. Messages live in a store.Store that the
orchestrator mutates from commands; every change arrives as a StoreChangedMsg
through a store.Mailbox, so the screen always draws the latest snapshot.

# Key Types

Model (model.go) - Login and chat screens, the scroll container, the
choreographer, the composer, the document picker and the toast overlay.

Events and Scheduler (scheduler.go) - A queue into the program for
background goroutines. The Scheduler delays choreographer callbacks on a
runtime timer and runs them inside Update, so every viewport access happens
on the program goroutine.

KeyMap (keys.go) - Bindings with help text for the help overlay.

# Store Changes

For each snapshot the model calls, in order:

 1. Choreographer.Sync, recording whether the viewport rests at the bottom
 2. re-render of the blocks
 3. Choreographer.Observe with the previous and the new sequence
 4. Choreographer.ContentResized

Messages flagged as new keep their badge for AnimationDelay and are then
marked as animated in the store.

# Usage

	events := chat.NewEvents(ctx, chat.DefaultEventBuffer)
	m := chat.New(ctx, chat.Deps{
		Orchestrator: orch,
		Mailbox:      mailbox,
		Backend:      client,
		Session:      sess,
		Themes:       themes,
		Toasts:       toasts,
		Events:       events,
		Config:       cfg,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
*/
package chat
