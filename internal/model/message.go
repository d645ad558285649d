// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// MESSAGE ID
// =============================================================================

// Local id prefixes. Ids carrying one of these prefixes only exist client-side.
const (
	PrefixLocal   = "local_"
	PrefixLoading = "loading_"
	PrefixError   = "error_"
)

// MessageID identifies a message. Server ids may arrive as JSON numbers.
type MessageID string

// String returns the id as a string.
func (id MessageID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id MessageID) IsZero() bool {
	return id == ""
}

// IsProvisional reports whether the id was generated locally.
func (id MessageID) IsProvisional() bool {
	s := string(id)
	return strings.HasPrefix(s, PrefixLocal) ||
		strings.HasPrefix(s, PrefixLoading) ||
		strings.HasPrefix(s, PrefixError)
}

// UnmarshalJSON accepts a string, a number or null.
func (id *MessageID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = MessageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("message id: %w", err)
	}
	*id = MessageID(n.String())
	return nil
}

// MarshalJSON writes numeric server ids back as numbers.
func (id MessageID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// =============================================================================
// TYPE AND STATUS
// =============================================================================

// Type is the author kind of a message.
type Type string

const (
	TypeUser Type = "user"
	TypeBot  Type = "bot"
)

// DisplayName returns a human-readable name for the author.
func (t Type) DisplayName() string {
	switch t {
	case TypeUser:
		return "You"
	case TypeBot:
		return "Assistant"
	default:
		return string(t)
	}
}

// Status is the lifecycle state of a message.
//
//	user: local -> sending -> sent -> replied
//	bot:  loading -> replied | error
type Status string

const (
	StatusLocal   Status = "local"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusReplied Status = "replied"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusLocal, StatusSending, StatusSent, StatusReplied, StatusLoading, StatusError:
		return true
	}
	return false
}

// InFlight reports whether s belongs to an unresolved optimistic exchange.
func (s Status) InFlight() bool {
	switch s {
	case StatusLocal, StatusSending, StatusLoading, StatusError:
		return true
	}
	return false
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single chat message.
type Message struct {
	ID        MessageID
	Type      Type
	Status    Status
	Text      string
	Documents []DocumentRef
	CreatedAt time.Time
	Pairing   Pairing

	IsLoading   bool
	LoadingText string
	IsLocal     bool
	IsNew       bool
}

// IsUser reports whether the message was authored by the user.
func (m Message) IsUser() bool {
	return m.Type == TypeUser
}

// IsBot reports whether the message was authored by the assistant.
func (m Message) IsBot() bool {
	return m.Type == TypeBot
}

// HasDocuments reports whether any document is attached.
func (m Message) HasDocuments() bool {
	return len(m.Documents) > 0
}

// Preview returns a truncated single-line preview of the text.
func (m Message) Preview(maxLen int) string {
	text := strings.Join(strings.Fields(m.Text), " ")
	runes := []rune(text)
	if maxLen <= 3 || len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}

// Clone returns a deep copy. Snapshots handed to observers are clones.
func (m Message) Clone() Message {
	c := m
	if m.Documents != nil {
		c.Documents = append([]DocumentRef(nil), m.Documents...)
	}
	if sp, ok := m.Pairing.(ServerPaired); ok {
		c.Pairing = ServerPaired{Replies: CloneAll(sp.Replies)}
	}
	return c
}

// CloneAll deep-copies a message list. A nil list stays nil.
func CloneAll(list []Message) []Message {
	if list == nil {
		return nil
	}
	out := make([]Message, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}

// =============================================================================
// JSON
// =============================================================================

type wireMessage struct {
	ID               MessageID     `json:"id"`
	Type             Type          `json:"type"`
	Status           Status        `json:"status,omitempty"`
	Message          string        `json:"message"`
	ContextDocuments []DocumentRef `json:"context_documents"`
	CreatedAt        string        `json:"created_at,omitempty"`
	ParentID         *MessageID    `json:"parentId"`
	Replies          []Message     `json:"replies,omitempty"`
	IsLoading        bool          `json:"isLoading,omitempty"`
	LoadingText      string        `json:"loadingText,omitempty"`
	IsLocal          bool          `json:"isLocal,omitempty"`
	IsNew            bool          `json:"isNew,omitempty"`
}

// MarshalJSON encodes the message in the API field layout.
func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{
		ID:               m.ID,
		Type:             m.Type,
		Status:           m.Status,
		Message:          m.Text,
		ContextDocuments: m.Documents,
		IsLoading:        m.IsLoading,
		LoadingText:      m.LoadingText,
		IsLocal:          m.IsLocal,
		IsNew:            m.IsNew,
	}
	if !m.CreatedAt.IsZero() {
		w.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	switch p := m.Pairing.(type) {
	case LocalPaired:
		parent := p.ParentID
		w.ParentID = &parent
	case ServerPaired:
		w.Replies = p.Replies
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the API field layout. Non-empty replies take
// precedence over parentId when both are present.
func (m *Message) UnmarshalJSON(b []byte) error {
	var w wireMessage
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	created, err := ParseTimestamp(w.CreatedAt)
	if err != nil {
		return fmt.Errorf("message %s: %w", w.ID, err)
	}
	*m = Message{
		ID:          w.ID,
		Type:        w.Type,
		Status:      w.Status,
		Text:        w.Message,
		Documents:   w.ContextDocuments,
		CreatedAt:   created,
		IsLoading:   w.IsLoading,
		LoadingText: w.LoadingText,
		IsLocal:     w.IsLocal,
		IsNew:       w.IsNew,
	}
	switch {
	case len(w.Replies) > 0:
		m.Pairing = ServerPaired{Replies: w.Replies}
	case w.ParentID != nil && !w.ParentID.IsZero():
		m.Pairing = LocalPaired{ParentID: *w.ParentID}
	}
	return nil
}

// timestampLayouts are the created_at formats seen from chat backends.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a created_at value. Empty input yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
