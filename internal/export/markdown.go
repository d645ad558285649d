// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	messages := t.exportable()
	if len(messages) == 0 {
		return nil, ErrEmpty
	}

	var sb strings.Builder
	title := t.Title
	if title == "" {
		title = "Chat"
	}

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(title))
		if t.Account != "" {
			fmt.Fprintf(&sb, "account: %s\n", escapeYAML(t.Account))
		}
		if t.Server != "" {
			fmt.Fprintf(&sb, "server: %s\n", escapeYAML(t.Server))
		}
		fmt.Fprintf(&sb, "messages: %d\n", len(messages))
		fmt.Fprintf(&sb, "exported: %s\n", t.exportedAt().Format(time.RFC3339))
		sb.WriteString("generator: rigchat\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))

	for i, msg := range messages {
		label := roleLabel(msg)
		if e.options.IncludeTimestamps && !msg.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, msg.CreatedAt.Local().Format("2006-01-02 15:04"))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		sb.WriteString(strings.TrimSpace(msg.Text))
		sb.WriteString("\n\n")

		if msg.HasDocuments() {
			docs := make([]string, len(msg.Documents))
			for j, d := range msg.Documents {
				docs[j] = "`" + string(d) + "`"
			}
			fmt.Fprintf(&sb, "*Documents: %s*\n\n", strings.Join(docs, ", "))
		}

		if i < len(messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func roleLabel(m model.Message) string {
	label := "[" + m.Type.DisplayName() + "]"
	if m.Status == model.StatusError {
		label += " (failed)"
	}
	return label
}

// escapeMarkdown escapes characters that would start Markdown syntax in a
// heading.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"#", `\#`,
		"[", `\[`,
		"]", `\]`,
	)
	return replacer.Replace(s)
}

// escapeYAML quotes s when it holds characters YAML treats specially.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#{}[]&*!|>'\"%@`\n") || strings.TrimSpace(s) != s {
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
	}
	return s
}
