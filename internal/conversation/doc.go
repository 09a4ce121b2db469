// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation keeps the question/answer log for one uploaded
// document.
//
// # Key Types
//
//   - Manager: runs Ask against the service and owns the log
//   - Log: append-only ordered turns
//   - Turn: one operator or assistant message
//
// # Ordering
//
// The operator turn is appended before the service is called and the
// assistant turn after it answers. On failure the assistant turn carries
// the classified error message, so every accepted question gains exactly
// one assistant turn. Questions are serialized.
package conversation
