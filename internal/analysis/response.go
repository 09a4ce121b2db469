// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jeranaias/casechat/internal/classify"
)

// The service's responses are validated field by field rather than trusted.
// A missing, null or mistyped field is a MalformedResponseError.

// DecodeUploadResponse validates {summary: string, case_id: string,
// filename?: string}. case_id must be non-empty.
func DecodeUploadResponse(body []byte) (*UploadResult, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	summary, err := requiredString(fields, "summary")
	if err != nil {
		return nil, err
	}
	caseID, err := requiredString(fields, "case_id")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(caseID) == "" {
		return nil, classify.Malformed("upload response has an empty case_id")
	}
	filename, err := optionalString(fields, "filename")
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		CaseID:   caseID,
		Summary:  summary,
		Filename: filename,
	}, nil
}

// DecodeChatResponse validates {reply: string}.
func DecodeChatResponse(body []byte) (string, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return "", err
	}
	return requiredString(fields, "reply")
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, classify.Malformed("response body is empty")
	}
	if trimmed[0] != '{' {
		return nil, classify.Malformed(fmt.Sprintf("response is not a JSON object: %s", excerpt(trimmed)))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, classify.Malformed(fmt.Sprintf("response is not valid JSON: %v", err))
	}
	if fields == nil {
		return nil, classify.Malformed("response is not a JSON object")
	}
	return fields, nil
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return "", classify.Malformed(fmt.Sprintf("response is missing %q", name))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", classify.Malformed(fmt.Sprintf("response field %q is not a string", name))
	}
	return s, nil
}

func optionalString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", classify.Malformed(fmt.Sprintf("response field %q is not a string", name))
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func excerpt(b []byte) string {
	const limit = 80
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
