// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sort"

	"github.com/jeranaias/rigchat/internal/model"
)

// SortMessages returns the display sequence for list: chronological by
// created_at, with every user message immediately followed by its answer.
// Server-attached replies win over a locally paired bot message; unpaired
// bot messages are dropped. The input is not modified.
func SortMessages(list []model.Message) []model.Message {
	timesorted := make([]model.Message, len(list))
	copy(timesorted, list)
	sort.SliceStable(timesorted, func(i, j int) bool {
		return timesorted[i].CreatedAt.Before(timesorted[j].CreatedAt)
	})

	emitted := make(map[model.MessageID]bool, len(timesorted))
	result := make([]model.Message, 0, len(timesorted))

	for _, msg := range timesorted {
		if msg.Type != model.TypeUser || emitted[msg.ID] {
			continue
		}
		result = append(result, msg)
		emitted[msg.ID] = true

		if replies := model.RepliesOf(msg); len(replies) > 0 {
			for _, reply := range replies {
				result = append(result, reply)
				emitted[reply.ID] = true
			}
			continue
		}

		for _, candidate := range timesorted {
			if candidate.Type != model.TypeBot || emitted[candidate.ID] {
				continue
			}
			if parent, ok := model.ParentOf(candidate); ok && parent == msg.ID {
				result = append(result, candidate)
				emitted[candidate.ID] = true
				break
			}
		}
	}

	return result
}
