// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport performs HTTP calls to the analysis service.
//
// Every call is bounded by a per-attempt timeout. Failures where no response
// came back (connection refused, dial errors, a connection closed before a
// response) are retried up to MaxRetries times with a linear backoff of retry number times BackoffStep. A call that
// got any response back is never retried.
//
// # Key Types
//
//   - Client: executes Requests with retry, rate limiting and size caps
//   - Request: replayable request description with a per-call timeout
//   - Response: fully read 2xx response
//   - Error: failure with Kind, status, body and attempt count
//
// # Usage
//
//	client := transport.NewClient(transport.DefaultConfig()).
//	    WithLogger(logger).
//	    WithMetrics(m)
//	resp, err := client.Do(ctx, &transport.Request{
//	    Endpoint: "health",
//	    Method:   http.MethodGet,
//	    URL:      "http://localhost:5000/api/health",
//	    Timeout:  2 * time.Second,
//	})
//	if transport.IsConnRefused(err) {
//	    // service is not running
//	}
package transport
