// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind is the user-facing error category.
type Kind int

const (
	KindUnknown Kind = iota

	// KindValidation is a client-side precondition failure. No network call
	// was made.
	KindValidation

	// KindNoActiveDocument means a question was asked before any upload
	// succeeded.
	KindNoActiveDocument

	// KindServiceUnavailable means the service could not be reached.
	KindServiceUnavailable

	// KindServiceReported carries the service's own error message.
	KindServiceReported

	// KindMalformedResponse means a response arrived but broke the contract.
	KindMalformedResponse

	// KindCrossOrigin means the service rejected the client's origin.
	KindCrossOrigin
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNoActiveDocument:
		return "NoActiveDocumentError"
	case KindServiceUnavailable:
		return "ServiceUnavailableError"
	case KindServiceReported:
		return "ServiceReportedError"
	case KindMalformedResponse:
		return "MalformedResponseError"
	case KindCrossOrigin:
		return "CrossOriginError"
	default:
		return "UnknownError"
	}
}

// =============================================================================
// MESSAGE TEMPLATES
// =============================================================================

const (
	msgUnavailable = "The analysis service at %s is not reachable. " +
		"Start the service or check the service URL, then try again."
	msgUnavailableNoURL = "The analysis service is not reachable. " +
		"Start the service or check the service URL, then try again."
	msgCrossOrigin = "The analysis service rejected requests from origin %s. " +
		"Add this origin to the service's allowed origins (CORS) or change the client origin."
	msgCrossOriginNoOrigin = "The analysis service rejected this client's origin. " +
		"The client origin is not in the service's allowed origins (CORS)."
	msgMalformed        = "The analysis service returned an unexpected response. Try again, or check the service logs."
	msgNoActiveDocument = "No document has been uploaded yet. Upload a document before asking questions."
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is a classified failure. Message is safe to show the operator.
// Detail holds raw diagnostics and only goes to the diagnostic log.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation builds a ValidationError with the given message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NoActiveDocument builds a NoActiveDocumentError.
func NoActiveDocument() *Error {
	return &Error{Kind: KindNoActiveDocument, Message: msgNoActiveDocument}
}

// ServiceUnavailable builds a ServiceUnavailableError naming serviceURL.
func ServiceUnavailable(serviceURL string) *Error {
	if serviceURL == "" {
		return &Error{Kind: KindServiceUnavailable, Message: msgUnavailableNoURL}
	}
	return &Error{Kind: KindServiceUnavailable, Message: fmt.Sprintf(msgUnavailable, serviceURL)}
}

// Malformed builds a MalformedResponseError. detail is diagnostic only.
func Malformed(detail string) *Error {
	return &Error{Kind: KindMalformedResponse, Message: msgMalformed, Detail: detail}
}

// CrossOrigin builds a CrossOriginError naming the client origin.
func CrossOrigin(origin string) *Error {
	if origin == "" {
		return &Error{Kind: KindCrossOrigin, Message: msgCrossOriginNoOrigin}
	}
	return &Error{Kind: KindCrossOrigin, Message: fmt.Sprintf(msgCrossOrigin, origin)}
}

// ServiceReported builds a ServiceReportedError carrying msg verbatim.
func ServiceReported(msg string) *Error {
	return &Error{Kind: KindServiceReported, Message: msg}
}

// As extracts a *Error from an error chain.
func As(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	if ce, ok := As(err); ok {
		return ce.Kind
	}
	return KindUnknown
}

// Is reports whether err is a classified error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
