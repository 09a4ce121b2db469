// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analysis implements the client side of the document-analysis
// service contract.
//
// # Endpoints
//
//	GET  /api/health   any 2xx within the probe timeout
//	POST /api/upload   multipart, one file field -> {summary, case_id, filename?}
//	POST /api/chat     {message, case_id}        -> {reply}
//
// Error responses may carry {"error": "..."}, which is surfaced verbatim.
//
// # Key Types
//
//   - Client: Health, Upload and Chat against the service
//   - HealthProber: Prober that resolves to a bool and never fails
//   - Prober, Uploader, Inquirer: the interfaces the session core consumes
//
// # Usage
//
//	client := analysis.NewClient(analysis.DefaultConfig(), tc, classifier, logger)
//	prober := analysis.NewHealthProber(client, logger)
//	if prober.Probe(ctx) {
//	    result, err := client.Upload(ctx, doc)
//	}
package analysis
