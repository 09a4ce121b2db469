// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes transport failures.
type Kind int

const (
	// KindNoResponse means the request was sent but nothing came back.
	KindNoResponse Kind = iota

	// KindConnRefused means the service actively refused the connection.
	KindConnRefused

	// KindDial means the connection could not be established (DNS, route).
	KindDial

	// KindTimeout means the per-attempt deadline passed.
	KindTimeout

	// KindCanceled means the caller canceled the context.
	KindCanceled

	// KindStatus means a response arrived with a non-2xx status.
	KindStatus

	// KindBody means a response arrived but its body could not be read.
	KindBody

	// KindRequest means the request could not be built.
	KindRequest
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindNoResponse:
		return "no_response"
	case KindConnRefused:
		return "conn_refused"
	case KindDial:
		return "dial"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindStatus:
		return "status"
	case KindBody:
		return "body"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is a failed HTTP call with everything known about it.
type Error struct {
	Kind       Kind
	Endpoint   string
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
	Attempts   int
	Cause      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Kind, e.Cause)
		}
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ResponseReceived reports whether the service answered at all.
func (e *Error) ResponseReceived() bool {
	return e.Kind == KindStatus || e.Kind == KindBody
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsConnRefused reports whether err is a refused connection.
func IsConnRefused(err error) bool {
	te, ok := AsError(err)
	return ok && te.Kind == KindConnRefused
}

// IsTimeout reports whether err is an attempt timeout.
func IsTimeout(err error) bool {
	te, ok := AsError(err)
	return ok && te.Kind == KindTimeout
}

// kindOf maps a failed http.Client.Do error to a Kind. parent is the
// caller's context, used to tell cancellation apart from attempt timeouts.
func kindOf(parent context.Context, err error) Kind {
	if parent.Err() != nil {
		if errors.Is(parent.Err(), context.DeadlineExceeded) {
			return KindTimeout
		}
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindConnRefused
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDial
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindDial
	}
	return KindNoResponse
}
