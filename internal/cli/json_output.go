// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for casechat commands.

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every --json command writes.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// VersionData is the payload of "version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// AskData is the payload of "ask --json".
type AskData struct {
	CaseID   string `json:"case_id"`
	Filename string `json:"filename"`
	Summary  string `json:"summary"`
	Question string `json:"question,omitempty"`
	Reply    string `json:"reply,omitempty"`
	Export   string `json:"export,omitempty"`
}

// StatusData is the payload of "status --json".
type StatusData struct {
	ServiceURL     string `json:"service_url"`
	Reachable      bool   `json:"reachable"`
	Error          string `json:"error,omitempty"`
	LatencyMs      int64  `json:"latency_ms,omitempty"`
	Origin         string `json:"origin,omitempty"`
	ConfigPath     string `json:"config_path"`
	LogFile        string `json:"log_file,omitempty"`
	UploadTimeout  string `json:"upload_timeout"`
	RequestTimeout string `json:"request_timeout"`
	MaxRetries     int    `json:"max_retries"`
}
