// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides helpers shared across rigchat.
//
// # Key Functions
//
// Text:
//   - NormalizeInput: NFC-normalized, trimmed composer text
//   - TruncateRunes, TruncateWidth: UTF-8 safe truncation with ellipsis
//   - StringWidth, PadRight: Terminal column width (wide runes count as 2)
//
// Type Conversion:
//   - IntToString, Int64ToString: Numeric to string conversion
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	text := util.NormalizeInput(raw)
//	label := util.TruncateWidth(title, 24)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
