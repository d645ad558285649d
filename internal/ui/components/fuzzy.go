// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// FuzzyMatch reports whether every rune of query appears in target in order,
// ignoring case, and scores the match (higher is better). Consecutive runes,
// word starts and the start of target earn bonuses; long targets a penalty.
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}

	q := []rune(strings.ToLower(query))
	tr := []rune(strings.ToLower(target))
	if len(q) > len(tr) {
		return 0, false
	}
	orig := []rune(target)
	if len(orig) != len(tr) {
		orig = tr
	}

	qi, last := 0, -1
	for ti := 0; ti < len(tr) && qi < len(q); ti++ {
		if tr[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		if isWordBoundary(orig, ti) {
			s += 7
		}
		score += s
		last = ti
		qi++
	}

	if qi != len(q) {
		return 0, false
	}
	return score - len(tr)/4, true
}

// isWordBoundary reports whether pos starts a word: after a separator or at
// a lower-to-upper case change.
func isWordBoundary(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	if pos >= len(runes) {
		return false
	}
	prev := runes[pos-1]
	switch prev {
	case ' ', '/', '-', '_', '.':
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(runes[pos])
}

// FilterDocuments returns the documents whose label fuzzy-matches query,
// best first. Equal scores keep the listing order.
func FilterDocuments(query string, docs []model.Document) []model.Document {
	type scored struct {
		doc   model.Document
		score int
	}

	var matches []scored
	for _, d := range docs {
		if score, ok := FuzzyMatch(query, d.DisplayLabel()); ok {
			matches = append(matches, scored{doc: d, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]model.Document, len(matches))
	for i, m := range matches {
		out[i] = m.doc
	}
	return out
}
