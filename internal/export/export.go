// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/casechat/internal/conversation"
	"github.com/jeranaias/casechat/internal/session"
	"github.com/jeranaias/casechat/internal/util"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("conversation has no turns")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the exportable record of one document's conversation.
type Transcript struct {
	SessionID string              `json:"session_id"`
	CaseID    string              `json:"case_id"`
	Filename  string              `json:"filename"`
	Summary   string              `json:"summary,omitempty"`
	StartedAt time.Time           `json:"started_at"`
	Turns     []conversation.Turn `json:"turns"`
}

// FromState builds a transcript from a session snapshot.
func FromState(s session.State) *Transcript {
	t := &Transcript{
		SessionID: s.SessionID,
		StartedAt: s.StartedAt,
		Turns:     s.Turns,
		Summary:   s.Outcome.Summary,
	}
	if s.Identity != nil {
		t.CaseID = s.Identity.CaseID
		t.Filename = s.Identity.Filename
	}
	return t
}

// Title returns a display title for the transcript.
func (t *Transcript) Title() string {
	if t.Filename != "" {
		return t.Filename
	}
	if t.CaseID != "" {
		return "Case " + t.CaseID
	}
	return "casechat conversation"
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a transcript in one format.
type Exporter interface {
	// Export converts a transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is used when ToFile gets no explicit path. Default: "."
	OutputDir string

	// IncludeMetadata adds the front matter and session header.
	IncludeMetadata bool

	// IncludeTimestamps adds per-turn times.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md", "":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile writes the transcript to path, or to a generated name under
// opts.OutputDir when path is empty. Returns the written path.
func ToFile(t *Transcript, exporter Exporter, path string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if path == "" {
		filename := fmt.Sprintf("casechat_%s_%s%s",
			sanitizeFilename(t.Title()),
			time.Now().Format("20060102_150405"),
			exporter.FileExtension(),
		)
		path = filepath.Join(opts.OutputDir, filename)
	}

	if err := util.AtomicWriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 50)

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "conversation"
	}
	return b.String()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
