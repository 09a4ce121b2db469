// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by casechat packages.
//
// # Key Functions
//
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - SingleLine: Whitespace collapsing for one-line previews
//
// # Usage
//
//	// Write config and exports without leaving partial files
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Preview a long reply in a status line
//	preview := util.TruncateRunes(util.SingleLine(reply), 60)
package util
