// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jeranaias/casechat/internal/logging"
	"github.com/jeranaias/casechat/internal/transport"
	"github.com/jeranaias/casechat/internal/util"
)

// maxDetailBody bounds how many characters of a response body go into Detail.
const maxDetailBody = 512

// crossOriginKeywords match failure text that looks like an origin policy
// rejection. Matching is case-insensitive.
var crossOriginKeywords = []string{
	"cors",
	"cross-origin",
	"cross origin",
	"access-control-allow-origin",
	"origin not allowed",
	"disallowed origin",
	"origin is not allowed",
	"not allowed by access-control",
}

// Classifier maps raw failures into the fixed taxonomy.
type Classifier struct {
	serviceURL string
	origin     string
	logger     *logging.Logger
}

// New creates a classifier. serviceURL and origin are named in messages.
func New(serviceURL, origin string, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Classifier{
		serviceURL: serviceURL,
		origin:     origin,
		logger:     logger,
	}
}

// ServiceUnavailable returns the unreachable error for this service.
func (c *Classifier) ServiceUnavailable() *Error {
	return ServiceUnavailable(c.serviceURL)
}

// Classify maps err into exactly one classified error. Raw detail is written
// to the diagnostic log. A nil err returns nil.
func (c *Classifier) Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if ce, ok := As(err); ok {
		return ce
	}

	classified := c.classify(err)
	if classified.Cause == nil {
		classified.Cause = err
	}
	c.logger.Warn("request failed",
		"kind", classified.Kind.String(),
		"detail", classified.Detail,
		"error", err.Error(),
	)
	return classified
}

func (c *Classifier) classify(err error) *Error {
	te, ok := transport.AsError(err)
	if !ok {
		if matchesCrossOrigin(err.Error()) {
			ce := CrossOrigin(c.origin)
			ce.Detail = err.Error()
			return ce
		}
		ce := c.ServiceUnavailable()
		ce.Detail = err.Error()
		return ce
	}

	detail := describe(te)

	if te.ResponseReceived() {
		if msg, ok := ServiceErrorMessage(te.Body); ok {
			ce := ServiceReported(msg)
			ce.Detail = detail
			return ce
		}
	}

	if matchesCrossOrigin(failureText(te)) {
		ce := CrossOrigin(c.origin)
		ce.Detail = detail
		return ce
	}

	switch te.Kind {
	case transport.KindStatus:
		switch te.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			ce := c.ServiceUnavailable()
			ce.Detail = detail
			return ce
		}
		return Malformed(detail)
	case transport.KindBody:
		return Malformed(detail)
	case transport.KindCanceled:
		ce := c.ServiceUnavailable()
		ce.Detail = "request was cancelled: " + detail
		return ce
	default:
		ce := c.ServiceUnavailable()
		ce.Detail = detail
		return ce
	}
}

// ServiceErrorMessage extracts a non-empty string "error" field from a JSON
// object body.
func ServiceErrorMessage(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	raw, ok := payload["error"]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", false
	}
	if strings.TrimSpace(msg) == "" {
		return "", false
	}
	return msg, true
}

func matchesCrossOrigin(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range crossOriginKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// failureText joins everything a cross-origin rejection could show up in.
func failureText(te *transport.Error) string {
	parts := []string{te.Status, string(te.Body)}
	if te.Cause != nil {
		parts = append(parts, te.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func describe(te *transport.Error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "endpoint=%s kind=%s attempts=%d", te.Endpoint, te.Kind, te.Attempts)
	if te.StatusCode != 0 {
		fmt.Fprintf(&b, " status=%d", te.StatusCode)
	}
	if te.Cause != nil {
		fmt.Fprintf(&b, " cause=%q", te.Cause.Error())
	}
	if len(te.Body) > 0 {
		fmt.Fprintf(&b, " body=%q", util.TruncateRunes(string(te.Body), maxDetailBody))
	}
	return b.String()
}
