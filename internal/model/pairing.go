// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Pairing links a user message to its bot answer. It is one of
// ServerPaired (on the user message) or LocalPaired (on the bot message);
// a nil Pairing means the message carries no link.
type Pairing interface {
	isPairing()
}

// ServerPaired holds the bot replies attached server-side to a user message.
type ServerPaired struct {
	Replies []Message
}

// LocalPaired points a locally created bot message at the user message
// that triggered it.
type LocalPaired struct {
	ParentID MessageID
}

func (ServerPaired) isPairing() {}
func (LocalPaired) isPairing()  {}

// ParentOf returns the parent id of a locally paired message.
func ParentOf(m Message) (MessageID, bool) {
	if lp, ok := m.Pairing.(LocalPaired); ok && !lp.ParentID.IsZero() {
		return lp.ParentID, true
	}
	return "", false
}

// RepliesOf returns the server-attached replies of a message, if any.
func RepliesOf(m Message) []Message {
	if sp, ok := m.Pairing.(ServerPaired); ok {
		return sp.Replies
	}
	return nil
}
