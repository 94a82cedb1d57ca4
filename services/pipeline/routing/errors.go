// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routing

import "fmt"

// =============================================================================
// Selection Errors
// =============================================================================

// ErrCode classifies selection failures for logging and metrics.
type ErrCode string

const (
	// ErrCodeParse indicates the LLM suggestion could not be parsed into a
	// name list. Recovered by falling back to all registered adapters.
	ErrCodeParse ErrCode = "parse_error"

	// ErrCodeSuggest indicates the LLM suggestion call itself failed.
	// Recovered the same way as a parse failure.
	ErrCodeSuggest ErrCode = "suggest_error"
)

// SelectionError is a classified failure inside the tool selector. All
// selection errors are recovered locally; they never escape Select.
type SelectionError struct {
	// Code classifies the failure.
	Code ErrCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// NewSelectionError creates a SelectionError.
func NewSelectionError(code ErrCode, message string, err error) *SelectionError {
	return &SelectionError{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *SelectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("routing: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("routing: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SelectionError) Unwrap() error {
	return e.Err
}
