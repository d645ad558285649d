// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the document-grounded chat API.
//
// Every call attaches the bearer credential of the current session, unwraps
// the {"data": ...} response envelope and converts failures into *Error
// values carrying a taxonomy Kind (network, server, validation, auth,
// unknown). A 401 response triggers the OnUnauthorized hook so the caller can
// reset its session.
//
// # Key Types
//
//   - Client: HTTP client with rate limiting and GET retry
//   - Error: Typed API failure, matched by the Err* sentinels via errors.Is
//   - SendRequest, SendResult: Payloads of the send endpoint
//   - History: Page of chat history
//   - AuthKind: Classification of login flow failures
//
// # Usage
//
//	client := api.NewClient("https://chat.example.com").
//	    WithTimeout(30 * time.Second).
//	    WithTokenSource(sessionStore)
//	client.OnUnauthorized(sessionStore.Reset)
//
//	result, err := client.Send(ctx, api.SendRequest{Message: "hi"})
//	if errors.Is(err, api.ErrUnauthorized) {
//	    // show login
//	}
//
// # Retries
//
// GET requests are retried on 429, 5xx and connection failures with
// exponential backoff (500ms base, 10s cap). POST requests are never retried
// so a message is never sent twice.
package api
