// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON. Message fields use the chat API
// names so an export can be read back with the same decoder.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonTranscript struct {
	Title      string        `json:"title,omitempty"`
	Account    string        `json:"account,omitempty"`
	Server     string        `json:"server,omitempty"`
	ExportedAt string        `json:"exported_at,omitempty"`
	Messages   []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Status    string   `json:"status,omitempty"`
	Message   string   `json:"message"`
	Documents []string `json:"context_documents"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	messages := t.exportable()
	if len(messages) == 0 {
		return nil, ErrEmpty
	}

	out := jsonTranscript{Title: t.Title, Messages: make([]jsonMessage, 0, len(messages))}
	if e.options.IncludeMetadata {
		out.Account = t.Account
		out.Server = t.Server
		out.ExportedAt = t.exportedAt().UTC().Format(time.RFC3339)
	}
	for _, m := range messages {
		jm := jsonMessage{
			ID:        m.ID.String(),
			Type:      string(m.Type),
			Status:    string(m.Status),
			Message:   m.Text,
			Documents: make([]string, 0, len(m.Documents)),
		}
		for _, d := range m.Documents {
			jm.Documents = append(jm.Documents, string(d))
		}
		if e.options.IncludeTimestamps && !m.CreatedAt.IsZero() {
			jm.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
		}
		out.Messages = append(out.Messages, jm)
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
