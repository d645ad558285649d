// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates the chat use cases between the message store and
// the remote API.
//
// SendMessage inserts a local user message and a loading placeholder, calls
// the API, and reconciles the answer or the failure back into the store in a
// fixed order: the user message moves to sent, the placeholder is replaced by
// the bot answer, the user message moves to replied, and attached documents
// echoed by the server are backfilled. A failed send turns the placeholder
// into an error message and never removes what the user typed.
//
// History is only applied while no optimistic exchange is in flight, so a
// stale server snapshot cannot discard a message that was just sent.
//
// # Key Types
//
//   - Orchestrator: Send, clear and history use cases
//   - ErrorSink: Receiver of user-facing notices
//   - Notice: Title, detail, severity and lifetime of a notification
//
// # Usage
//
//	orch := chat.New(st, client, toasts, chat.WithHistoryLimit(50))
//	if err := orch.LoadHistory(ctx); err != nil {
//	    // already reported to the sink
//	}
//	_, err := orch.SendMessage(ctx, model.Draft{Text: "What is our leave policy?"})
package chat
