// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DocumentRef is the label of a document attached to a message.
type DocumentRef string

// UnmarshalJSON accepts a plain label or a document object.
func (d *DocumentRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var doc Document
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		*d = DocumentRef(doc.DisplayLabel())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n json.Number
		if numErr := json.Unmarshal(b, &n); numErr != nil {
			return err
		}
		s = n.String()
	}
	*d = DocumentRef(s)
	return nil
}

// Document is an entry of the server document listing.
type Document struct {
	ID    int64  `json:"id"`
	Label string `json:"label,omitempty"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
}

// DisplayLabel returns the first non-empty of label, title and name,
// falling back to the numeric id.
func (d Document) DisplayLabel() string {
	for _, s := range []string{d.Label, d.Title, d.Name} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	if d.ID != 0 {
		return "#" + strconv.FormatInt(d.ID, 10)
	}
	return ""
}

// Draft is what the user composed before sending.
type Draft struct {
	Text      string
	Documents []Document
}

// DocumentIDs returns the ids of the attached documents.
func (d Draft) DocumentIDs() []int64 {
	ids := make([]int64, 0, len(d.Documents))
	for _, doc := range d.Documents {
		ids = append(ids, doc.ID)
	}
	return ids
}

// Labels returns the attached document labels, or nil when nothing is attached.
func (d Draft) Labels() []DocumentRef {
	if len(d.Documents) == 0 {
		return nil
	}
	refs := make([]DocumentRef, 0, len(d.Documents))
	for _, doc := range d.Documents {
		refs = append(refs, DocumentRef(doc.DisplayLabel()))
	}
	return refs
}
