// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI components of the rigchat TUI.

Components are built on Bubble Tea and Lip Gloss and take a *styles.Theme so
a theme switch restyles them without rebuilding state.

# Key Types

ChatViewport (viewport.go) - The scroll container. It lays out rendered
message blocks over a bubbles viewport and implements scroll.Viewport in
line units: ScrollTop is the first visible line, MarkerRect is the screen
extent of a message block. Smooth scrolls advance on ScrollFrameMsg.

MessageRenderer (message.go) - Renders messages into blocks. Bot text goes
through glamour in markdown mode or through the plain renderer with chroma
code blocks (codeblock.go). Settled messages are cached.

ToastManager (toast.go) - Auto-dismissing notifications. It implements
chat.ErrorSink so the orchestrator reports errors straight into it.

StatusBar (statusbar.go) - Bottom status line.

DocPicker (docpicker.go) - Fuzzy-filtered document selection (fuzzy.go).

# Usage

	vp := components.NewChatViewport(theme)
	vp.SetSize(width, height)
	vp.SetBlocks(renderer.Blocks(snapshot.Sorted))
	chor := scroll.New(vp, scheduler, opts)
*/
package components
