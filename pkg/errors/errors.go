// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling with rich context for Perico.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Perico errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeMalformedEvent indicates an inbound event lacked a required
	// sub-structure (e.g. an utterance without a dialog event).
	CodeMalformedEvent ErrorCode = "MALFORMED_EVENT"

	// CodeUnsupportedModality indicates a recognized event carried content
	// the agent cannot interpret (e.g. no text feature).
	CodeUnsupportedModality ErrorCode = "UNSUPPORTED_MODALITY"

	// CodeUnhandledEvent indicates an event variant no handler is registered
	// for. Such events are skipped, never answered with an error; the code
	// exists for classification and metrics only.
	CodeUnhandledEvent ErrorCode = "UNHANDLED_EVENT"

	// CodeHandlerFailure indicates an unexpected failure inside a handler.
	CodeHandlerFailure ErrorCode = "HANDLER_FAILURE"

	// CodeTransport indicates a payload or HTTP-level failure outside the
	// dispatch core.
	CodeTransport ErrorCode = "TRANSPORT"

	// CodeInvalidConfig indicates malformed configuration at startup.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// CodeStorage indicates a transcript store failure.
	CodeStorage ErrorCode = "STORAGE"
)

// PericoError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type PericoError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
	StatusCode  int // HTTP status hint for transport responses
}

// Error implements the error interface.
func (e *PericoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *PericoError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *PericoError) MarshalJSON() ([]byte, error) {
	type Alias PericoError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new PericoError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *PericoError {
	return &PericoError{
		Code:        code,
		Message:     msg,
		Err:         cause,
		Context:     make(map[string]interface{}),
		Recoverable: codeRecoverable(code),
		StatusCode:  codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *PericoError) WithContext(key string, value interface{}) *PericoError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *PericoError) WithRecoverable(recoverable bool) *PericoError {
	e.Recoverable = recoverable
	return e
}

// WithStatusCode overrides the HTTP status hint.
// Returns the error for method chaining.
func (e *PericoError) WithStatusCode(status int) *PericoError {
	e.StatusCode = status
	return e
}

// AsPericoError attempts to convert an error to a PericoError.
// Returns the error as PericoError if it is one, or wraps it otherwise.
func AsPericoError(err error) *PericoError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PericoError); ok {
		return pe
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *PericoError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// codeRecoverable reports whether retrying may succeed for the code.
func codeRecoverable(code ErrorCode) bool {
	switch code {
	case CodeTransport, CodeStorage:
		return true
	default:
		return false
	}
}

// codeToStatusCode maps error codes to HTTP status hints.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeMalformedEvent, CodeUnsupportedModality, CodeInvalidConfig:
		return 400 // INVALID_ARGUMENT
	case CodeUnhandledEvent:
		return 404 // NOT_FOUND
	case CodeTransport:
		return 502 // BAD_GATEWAY
	default:
		return 500 // INTERNAL
	}
}
