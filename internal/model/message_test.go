// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE ID TESTS
// =============================================================================

func TestMessageID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want MessageID
	}{
		{"number", `5`, "5"},
		{"string", `"local_1_1"`, "local_1_1"},
		{"null", `null`, ""},
		{"large number", `90071992547409`, "90071992547409"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var id MessageID
			if err := json.Unmarshal([]byte(tc.in), &id); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tc.in, err)
			}
			if id != tc.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tc.in, id, tc.want)
			}
		})
	}
}

func TestMessageID_IsProvisional(t *testing.T) {
	tests := []struct {
		id   MessageID
		want bool
	}{
		{"local_1700000000000_1", true},
		{"loading_1700000000000_2", true},
		{"error_1700000000000_3", true},
		{"42", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := tc.id.IsProvisional(); got != tc.want {
			t.Errorf("%q.IsProvisional() = %v, want %v", tc.id, got, tc.want)
		}
	}
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestStatus_InFlight(t *testing.T) {
	inFlight := map[Status]bool{
		StatusLocal:   true,
		StatusSending: true,
		StatusLoading: true,
		StatusError:   true,
		StatusSent:    false,
		StatusReplied: false,
		Status(""):    false,
	}
	for status, want := range inFlight {
		if got := status.InFlight(); got != want {
			t.Errorf("%q.InFlight() = %v, want %v", status, got, want)
		}
	}
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestMessage_UnmarshalServerPaired(t *testing.T) {
	payload := `{
		"id": 5,
		"type": "user",
		"status": "replied",
		"message": "hi",
		"context_documents": ["Handbook", {"id": 7, "title": "Policy"}],
		"created_at": "2024-05-01 10:00:00",
		"replies": [{"id": 6, "type": "bot", "message": "hello", "created_at": "2024-05-01T10:00:02Z"}]
	}`

	var m Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if m.ID != "5" || m.Type != TypeUser || m.Text != "hi" {
		t.Errorf("unexpected message: %+v", m)
	}
	if len(m.Documents) != 2 || m.Documents[0] != "Handbook" || m.Documents[1] != "Policy" {
		t.Errorf("Documents = %v, want [Handbook Policy]", m.Documents)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !m.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", m.CreatedAt, want)
	}
	replies := RepliesOf(m)
	if len(replies) != 1 || replies[0].ID != "6" {
		t.Fatalf("RepliesOf = %+v, want one reply with id 6", replies)
	}
}

func TestMessage_RepliesTakePrecedenceOverParent(t *testing.T) {
	payload := `{"id":"1","type":"user","parentId":"0","replies":[{"id":"2","type":"bot"}]}`

	var m Message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if _, ok := m.Pairing.(ServerPaired); !ok {
		t.Errorf("Pairing = %T, want ServerPaired", m.Pairing)
	}
}

func TestMessage_LocalPairedRoundTrip(t *testing.T) {
	m := Message{
		ID:        "loading_1_2",
		Type:      TypeBot,
		Status:    StatusLoading,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Pairing:   LocalPaired{ParentID: "local_1_1"},
		IsLocal:   true,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	parent, ok := ParentOf(back)
	if !ok || parent != "local_1_1" {
		t.Errorf("ParentOf = %q, %v; want local_1_1, true", parent, ok)
	}
	if !back.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", back.CreatedAt, m.CreatedAt)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"2024-05-01T10:00:00.123Z", false},
		{"2024-05-01T10:00:00.000000Z", false},
		{"2024-05-01 10:00:00", false},
		{"1714557600000", false},
		{"yesterday", true},
	}
	for _, tc := range tests {
		_, err := ParseTimestamp(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseTimestamp(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
}

// =============================================================================
// CLONE TESTS
// =============================================================================

func TestMessage_CloneIsDeep(t *testing.T) {
	orig := Message{
		ID:        "1",
		Type:      TypeUser,
		Documents: []DocumentRef{"a"},
		Pairing:   ServerPaired{Replies: []Message{{ID: "2", Type: TypeBot, Text: "x"}}},
	}

	c := orig.Clone()
	c.Documents[0] = "changed"
	RepliesOf(c)[0].Text = "changed"

	if orig.Documents[0] != "a" {
		t.Error("Clone shares the documents slice")
	}
	if RepliesOf(orig)[0].Text != "x" {
		t.Error("Clone shares the replies slice")
	}
}

func TestDraft_Labels(t *testing.T) {
	if labels := (Draft{Text: "x"}).Labels(); labels != nil {
		t.Errorf("Labels() without documents = %v, want nil", labels)
	}

	d := Draft{Documents: []Document{{ID: 1, Label: "Guide"}, {ID: 2}}}
	labels := d.Labels()
	if len(labels) != 2 || labels[0] != "Guide" || labels[1] != "#2" {
		t.Errorf("Labels() = %v, want [Guide #2]", labels)
	}
	ids := d.DocumentIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("DocumentIDs() = %v, want [1 2]", ids)
	}
}

func TestMessage_Preview(t *testing.T) {
	m := Message{Text: "hello   there\nworld"}
	if got := m.Preview(100); got != "hello there world" {
		t.Errorf("Preview(100) = %q", got)
	}
	if got := m.Preview(8); got != "hello..." {
		t.Errorf("Preview(8) = %q, want %q", got, "hello...")
	}
}
