// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/casechat/internal/conversation"
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
	if len(t.Turns) == 0 {
		return nil, ErrEmptyTranscript
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(t.Title()))
		if t.CaseID != "" {
			fmt.Fprintf(&sb, "case_id: %s\n", escapeYAML(t.CaseID))
		}
		fmt.Fprintf(&sb, "session: %s\n", t.SessionID)
		if !t.StartedAt.IsZero() {
			fmt.Fprintf(&sb, "date: %s\n", t.StartedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(&sb, "turns: %d\n", len(t.Turns))
		fmt.Fprintf(&sb, "exported: %s\n", time.Now().Format(time.RFC3339))
		sb.WriteString("generator: casechat\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(t.Title()))

	if e.options.IncludeMetadata {
		sb.WriteString("## Document\n\n")
		if t.Filename != "" {
			fmt.Fprintf(&sb, "- **File**: %s\n", escapeMarkdown(t.Filename))
		}
		if t.CaseID != "" {
			fmt.Fprintf(&sb, "- **Case**: `%s`\n", t.CaseID)
		}
		if !t.StartedAt.IsZero() {
			fmt.Fprintf(&sb, "- **Session Started**: %s\n", formatTimestamp(t.StartedAt))
		}
		fmt.Fprintf(&sb, "- **Questions**: %d\n", countRole(t.Turns, conversation.RoleOperator))
		sb.WriteString("\n")
		if t.Summary != "" {
			sb.WriteString("### Summary\n\n")
			sb.WriteString(strings.TrimSpace(t.Summary))
			sb.WriteString("\n\n")
		}
		sb.WriteString("---\n\n")
	}

	sb.WriteString("## Conversation\n\n")

	for i, turn := range t.Turns {
		label := roleLabel(turn)
		if e.options.IncludeTimestamps && !turn.Timestamp.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(turn.Timestamp))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		content := strings.TrimSpace(turn.Content)
		if turn.IsError {
			content = "> " + strings.ReplaceAll(content, "\n", "\n> ")
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")

		if i < len(t.Turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "*Exported from casechat on %s*\n", time.Now().Format("January 2, 2006 at 3:04 PM"))

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

func roleLabel(turn conversation.Turn) string {
	switch turn.Role {
	case conversation.RoleOperator:
		return "[Operator]"
	case conversation.RoleAssistant:
		if turn.IsError {
			return "[Assistant: error]"
		}
		return "[Assistant]"
	case "":
		return "Unknown"
	default:
		r := []rune(string(turn.Role))
		return strings.ToUpper(string(r[0])) + string(r[1:])
	}
}

func countRole(turns []conversation.Turn, role conversation.Role) int {
	n := 0
	for _, t := range turns {
		if t.Role == role {
			n++
		}
	}
	return n
}

// escapeMarkdown escapes characters that break headings and list items.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values containing YAML special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
