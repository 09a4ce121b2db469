// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error display and exit codes for casechat commands.
//
// Commands always return errors and let Run decide how to show them.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/casechat/internal/classify"
	"github.com/jeranaias/casechat/internal/config"
	"github.com/jeranaias/casechat/internal/transport"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid usage or operator input
	ExitUsageError = 2
	// ExitConfigError indicates a configuration problem, including CORS rejection
	ExitConfigError = 3
	// ExitServiceUnavailable indicates the analysis service could not be reached
	ExitServiceUnavailable = 5
	// ExitServiceError indicates the service answered with an error or bad data
	ExitServiceError = 6
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ValidationError represents invalid command-line input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError shows err as JSON on stdout or as a styled line on stderr.
func DisplayError(err error, jsonMode bool, stdout, stderr io.Writer) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(err, stdout)
		return
	}
	fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// DisplayErrorJSON writes a structured error object.
func DisplayErrorJSON(err error, w io.Writer) {
	output := map[string]interface{}{
		"error":     err.Error(),
		"success":   false,
		"exit_code": GetExitCode(err),
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		output["error_type"] = "validation_error"
		output["field"] = ve.Field
		if ve.Example != "" {
			output["example"] = ve.Example
		}
	} else if ce, ok := classify.As(err); ok {
		output["error_type"] = ce.Kind.String()
	} else {
		output["error_type"] = "generic_error"
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ExitUsageError
	}

	if ce, ok := classify.As(err); ok {
		switch ce.Kind {
		case classify.KindValidation, classify.KindNoActiveDocument:
			return ExitUsageError
		case classify.KindCrossOrigin:
			return ExitConfigError
		case classify.KindServiceUnavailable:
			if transport.IsTimeout(ce.Cause) {
				return ExitTimeoutError
			}
			return ExitServiceUnavailable
		case classify.KindServiceReported, classify.KindMalformedResponse:
			return ExitServiceError
		}
	}

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		return ExitConfigError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "config"):
		return ExitConfigError
	case strings.Contains(msg, "timed out"), strings.Contains(msg, "deadline exceeded"):
		return ExitTimeoutError
	}
	return ExitGeneralError
}
