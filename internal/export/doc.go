// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a session's conversation to Markdown or JSON.
//
// # Key Types
//
//   - Transcript: The exportable record built from a session snapshot
//   - Exporter: Format interface (MarkdownExporter, JSONExporter)
//   - Options: Metadata and timestamp toggles
//
// # Usage
//
//	t := export.FromState(sess.Snapshot())
//	exp, _ := export.ForFormat("md", nil)
//	path, err := export.ToFile(t, exp, "", nil)
package export
