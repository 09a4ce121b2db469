// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify maps failures into the fixed set of user-facing errors.
//
// Every classified error carries a fixed message template that is safe to
// show the operator. Raw diagnostics (status codes, transport error kinds,
// response bodies) stay in Detail and are only written to the diagnostic log.
//
// # Key Types
//
//   - Kind: Validation, NoActiveDocument, ServiceUnavailable, ServiceReported,
//     MalformedResponse, CrossOrigin
//   - Error: classified error with Message and Detail
//   - Classifier: turns transport failures into an Error
//
// # Classification Order
//
// A service-supplied {"error": "..."} payload always wins and is surfaced
// verbatim. Next, failure text that looks like an origin rejection becomes a
// CrossOrigin error. Failures without any response, and gateway statuses
// 502/503/504, become ServiceUnavailable. Any other received response that
// breaks the contract is a MalformedResponse.
//
// # Usage
//
//	c := classify.New("http://localhost:5000", "", logger)
//	if err != nil {
//	    ce := c.Classify(err)
//	    fmt.Println(ce.Message)
//	}
package classify
