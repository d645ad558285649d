// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages, documents and users.
//
// This package defines the core domain types shared by the message store, the
// orchestrator, the API client and the UI. Field names in JSON follow the
// remote chat API so history payloads decode directly into these types.
//
// # Key Types
//
//   - Message: Single chat message with type, status, timestamps and pairing
//   - MessageID: Opaque identifier, server-issued or locally generated
//   - Pairing: Tagged union linking a user message to its bot answer
//     (ServerPaired replies or a LocalPaired parent reference)
//   - DocumentRef: Label of a document attached to a user message
//   - Document: Entry of the server document listing
//   - Draft: Text and attachments composed by the user before sending
//   - User: Authenticated session holder (access token and profile)
//
// # Usage
//
// Decode a history payload:
//
//	var page struct {
//	    Messages []model.Message `json:"messages"`
//	}
//	_ = json.Unmarshal(body, &page)
//
// Inspect pairing:
//
//	if parent, ok := model.ParentOf(msg); ok {
//	    fmt.Println("answer to", parent)
//	}
package model
