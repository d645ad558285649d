// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/util"
)

// ErrEmpty is returned when a transcript has nothing to export.
var ErrEmpty = errors.New("transcript has no messages")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a conversation ready for export.
type Transcript struct {
	Title    string
	Account  string
	Server   string
	Messages []model.Message

	// ExportedAt defaults to the time of export.
	ExportedAt time.Time
}

// exportable returns the settled messages. Loading placeholders are skipped.
func (t *Transcript) exportable() []model.Message {
	out := make([]model.Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		if m.IsLoading || m.Status == model.StatusLoading {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (t *Transcript) exportedAt() time.Time {
	if t.ExportedAt.IsZero() {
		return time.Now()
	}
	return t.ExportedAt
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript to one format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the extension with the dot, e.g. ".md".
	FileExtension() string
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// IncludeMetadata writes the account, server and export time.
	IncludeMetadata bool

	// IncludeTimestamps writes per-message creation times.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForPath picks the exporter from the file extension of path.
func ForPath(path string, opts *Options) (Exporter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return NewMarkdownExporter(opts), nil
	case ".json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use .md or .json)", filepath.Ext(path))
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// WriteFile exports t to path, creating parent directories.
func WriteFile(path string, t *Transcript, exporter Exporter) error {
	content, err := exporter.Export(t)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, content, 0644, 0755); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// DefaultFilename returns a file name for t with the given extension.
func DefaultFilename(t *Transcript, ext string) string {
	return fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(t.Title),
		t.exportedAt().Format("20060102_150405"),
		ext)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 50)

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	var b strings.Builder
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			b.WriteRune(replacement)
		} else if r < 32 || r == 127 {
			b.WriteRune('-')
		} else {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "conversation"
	}
	return b.String()
}
