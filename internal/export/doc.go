// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to a file.
//
// # Key Types
//
//   - Transcript: The messages in display order plus account metadata
//   - Exporter: Converts a transcript to one format
//   - Options: Metadata and timestamp switches
//
// # Supported Formats
//
//   - Markdown: Human-readable, code fences kept as sent
//   - JSON: Machine-readable, same field names as the chat API
//
// # Usage
//
//	exp, err := export.ForPath("chat.md", export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	err = export.WriteFile("chat.md", tr, exp)
package export
