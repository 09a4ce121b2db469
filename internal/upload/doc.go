// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload implements the single-document upload state machine.
//
// # States
//
//	Idle -> Probing -> Uploading -> Succeeded
//	           |           |
//	           +-> Failed <+
//
// SelectDocument returns to Idle from any state. Upload without a document
// fails with a ValidationError and never touches the network. A failed
// liveness probe fails with ServiceUnavailableError and the upload endpoint
// is never called.
//
// # Key Types
//
//   - Coordinator: owns the selected document, outcome and identity
//   - Outcome: NotAttempted, InProgress, Succeeded or Failed
//   - State: the lifecycle position
package upload
