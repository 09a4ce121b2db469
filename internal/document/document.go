// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package document holds the operator's selected document and the identity
// the analysis service issues for it.
//
// Content is never inspected beyond media-type sniffing. Format checks are
// the service's job.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jeranaias/casechat/internal/classify"
)

const (
	// DefaultMaxSize is the largest file Load accepts (50MB).
	DefaultMaxSize = 50 * 1024 * 1024

	// DefaultMediaType is used when nothing better can be detected.
	DefaultMediaType = "application/octet-stream"
)

// Document is a selected file. It is replaced, never mutated, on each
// selection.
type Document struct {
	Name      string
	MediaType string
	Content   []byte
}

// New creates a document. An empty mediaType is detected from content.
func New(name, mediaType string, content []byte) *Document {
	if mediaType == "" {
		mediaType = DetectMediaType(content)
	}
	return &Document{
		Name:      name,
		MediaType: mediaType,
		Content:   content,
	}
}

// Size returns the content length in bytes.
func (d *Document) Size() int {
	return len(d.Content)
}

// Load reads path into a Document. maxSize <= 0 uses DefaultMaxSize.
// All failures are ValidationErrors since no network call is involved.
func Load(path string, maxSize int64) (*Document, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, classify.Validation("no file selected")
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &classify.Error{
				Kind:    classify.KindValidation,
				Message: fmt.Sprintf("file not found: %s", path),
				Cause:   err,
			}
		}
		return nil, &classify.Error{
			Kind:    classify.KindValidation,
			Message: fmt.Sprintf("cannot open %s", path),
			Detail:  err.Error(),
			Cause:   err,
		}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &classify.Error{Kind: classify.KindValidation, Message: fmt.Sprintf("cannot read %s", path), Cause: err}
	}
	if info.IsDir() {
		return nil, classify.Validation(fmt.Sprintf("%s is a directory, not a file", path))
	}
	if info.Size() > maxSize {
		return nil, classify.Validation(fmt.Sprintf("%s is too large (%s, limit %s)",
			filepath.Base(path), FormatSize(info.Size()), FormatSize(maxSize)))
	}

	content, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, &classify.Error{Kind: classify.KindValidation, Message: fmt.Sprintf("cannot read %s", path), Cause: err}
	}
	if int64(len(content)) > maxSize {
		return nil, classify.Validation(fmt.Sprintf("%s is too large (limit %s)", filepath.Base(path), FormatSize(maxSize)))
	}

	return New(filepath.Base(path), DetectMediaType(content), content), nil
}

// DetectMediaType sniffs the media type of content.
func DetectMediaType(content []byte) string {
	if len(content) == 0 {
		return DefaultMediaType
	}
	mt := mimetype.Detect(content)
	if mt == nil || mt.String() == "" {
		return DefaultMediaType
	}
	return mt.String()
}

// FormatSize renders a byte count for messages.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Identity is what the service issues on a successful upload. CaseID is
// required by every question about the document.
type Identity struct {
	CaseID   string `json:"case_id"`
	Filename string `json:"filename"`
}
