// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jeranaias/rigchat/internal/model"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return base.Add(time.Duration(sec) * time.Second)
}

func ids(list []model.Message) []model.MessageID {
	out := make([]model.MessageID, len(list))
	for i, m := range list {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a []model.MessageID, b ...model.MessageID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortMessages(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Message
		want []model.MessageID
	}{
		{
			name: "empty",
			in:   nil,
			want: []model.MessageID{},
		},
		{
			name: "chronological users",
			in: []model.Message{
				{ID: "2", Type: model.TypeUser, CreatedAt: at(2)},
				{ID: "1", Type: model.TypeUser, CreatedAt: at(1)},
			},
			want: []model.MessageID{"1", "2"},
		},
		{
			name: "late answer stays adjacent",
			in: []model.Message{
				{ID: "u1", Type: model.TypeUser, CreatedAt: at(1)},
				{ID: "u2", Type: model.TypeUser, CreatedAt: at(2)},
				{ID: "b1", Type: model.TypeBot, CreatedAt: at(3), Pairing: model.LocalPaired{ParentID: "u1"}},
			},
			want: []model.MessageID{"u1", "b1", "u2"},
		},
		{
			name: "server replies in stored order",
			in: []model.Message{
				{ID: "u1", Type: model.TypeUser, CreatedAt: at(1), Pairing: model.ServerPaired{Replies: []model.Message{
					{ID: "r2", Type: model.TypeBot, CreatedAt: at(5)},
					{ID: "r1", Type: model.TypeBot, CreatedAt: at(4)},
				}}},
			},
			want: []model.MessageID{"u1", "r2", "r1"},
		},
		{
			name: "orphan bot excluded",
			in: []model.Message{
				{ID: "b0", Type: model.TypeBot, CreatedAt: at(0)},
				{ID: "u1", Type: model.TypeUser, CreatedAt: at(1)},
				{ID: "b9", Type: model.TypeBot, CreatedAt: at(2), Pairing: model.LocalPaired{ParentID: "gone"}},
			},
			want: []model.MessageID{"u1"},
		},
		{
			name: "replies preferred over local pairing",
			in: []model.Message{
				{ID: "u1", Type: model.TypeUser, CreatedAt: at(1), Pairing: model.ServerPaired{Replies: []model.Message{
					{ID: "r1", Type: model.TypeBot},
				}}},
				{ID: "b1", Type: model.TypeBot, CreatedAt: at(2), Pairing: model.LocalPaired{ParentID: "u1"}},
			},
			want: []model.MessageID{"u1", "r1"},
		},
		{
			name: "one bot per user",
			in: []model.Message{
				{ID: "u1", Type: model.TypeUser, CreatedAt: at(1)},
				{ID: "b1", Type: model.TypeBot, CreatedAt: at(2), Pairing: model.LocalPaired{ParentID: "u1"}},
				{ID: "b2", Type: model.TypeBot, CreatedAt: at(3), Pairing: model.LocalPaired{ParentID: "u1"}},
			},
			want: []model.MessageID{"u1", "b1"},
		},
		{
			name: "equal timestamps keep insertion order",
			in: []model.Message{
				{ID: "a", Type: model.TypeUser, CreatedAt: at(1)},
				{ID: "b", Type: model.TypeUser, CreatedAt: at(1)},
				{ID: "c", Type: model.TypeUser, CreatedAt: at(1)},
			},
			want: []model.MessageID{"a", "b", "c"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(SortMessages(tc.in))
			if !equalIDs(got, tc.want...) {
				t.Errorf("SortMessages() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSortMessages_DoesNotModifyInput(t *testing.T) {
	in := []model.Message{
		{ID: "2", Type: model.TypeUser, CreatedAt: at(2)},
		{ID: "1", Type: model.TypeUser, CreatedAt: at(1)},
	}
	SortMessages(in)
	if in[0].ID != "2" {
		t.Error("SortMessages reordered its input")
	}
}

// Every emitted bot message directly follows its user message.
func TestSortMessages_PairingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		var list []model.Message
		var users []model.MessageID
		for i := 0; i < 12; i++ {
			id := model.MessageID(string(rune('a'+i)) + "_" + string(rune('0'+round%10)))
			created := at(rng.Intn(20))
			if rng.Intn(2) == 0 || len(users) == 0 {
				list = append(list, model.Message{ID: id, Type: model.TypeUser, CreatedAt: created})
				users = append(users, id)
				continue
			}
			parent := users[rng.Intn(len(users))]
			if rng.Intn(4) == 0 {
				parent = "missing"
			}
			list = append(list, model.Message{ID: id, Type: model.TypeBot, CreatedAt: created, Pairing: model.LocalPaired{ParentID: parent}})
		}

		sorted := SortMessages(list)
		for i, m := range sorted {
			if m.Type != model.TypeBot {
				continue
			}
			if i == 0 {
				t.Fatalf("round %d: bot %s emitted first", round, m.ID)
			}
			parent, _ := model.ParentOf(m)
			if prev := sorted[i-1]; prev.Type != model.TypeUser || prev.ID != parent {
				t.Fatalf("round %d: bot %s follows %s, want its parent %s", round, m.ID, prev.ID, parent)
			}
		}
	}
}
