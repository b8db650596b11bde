// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the error taxonomy of a loopback OAuth flow.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrPortExhaustion is returned when no loopback port could be bound
	ErrPortExhaustion = "port_exhaustion"

	// ErrMalformedInput is returned when the caller supplied an unusable authorization URL
	ErrMalformedInput = "malformed_input"

	// ErrListenerStart is returned when the callback listener could not bind its port
	ErrListenerStart = "listener_start"

	// ErrCallbackParse is returned when the redirect request could not be parsed
	ErrCallbackParse = "callback_parse"

	// ErrProviderError is returned when the provider redirected with an error parameter
	ErrProviderError = "provider_error"

	// ErrLaunchFailure is returned when the browser could not be opened
	ErrLaunchFailure = "launch_failure"

	// ErrTimeout is returned when no callback arrived before the deadline
	ErrTimeout = "timeout"

	// ErrServer is returned when the callback server failed while waiting
	ErrServer = "server_error"

	// ErrCancelled is returned when the flow was cancelled by its caller
	ErrCancelled = "cancelled"
)

// Error is a typed flow error.
type Error struct {
	// Type is one of the error type constants above
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewPortExhaustionError creates a new port exhaustion error
func NewPortExhaustionError(message string, cause error) *Error {
	return NewError(ErrPortExhaustion, message, cause)
}

// NewMalformedInputError creates a new malformed input error
func NewMalformedInputError(message string, cause error) *Error {
	return NewError(ErrMalformedInput, message, cause)
}

// NewListenerStartError creates a new listener start error
func NewListenerStartError(message string, cause error) *Error {
	return NewError(ErrListenerStart, message, cause)
}

// NewCallbackParseError creates a new callback parse error
func NewCallbackParseError(message string, cause error) *Error {
	return NewError(ErrCallbackParse, message, cause)
}

// NewProviderError creates a new provider error
func NewProviderError(message string) *Error {
	return NewError(ErrProviderError, message, nil)
}

// NewLaunchFailureError creates a new launch failure error
func NewLaunchFailureError(message string, cause error) *Error {
	return NewError(ErrLaunchFailure, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string) *Error {
	return NewError(ErrTimeout, message, nil)
}

// NewServerError creates a new server error
func NewServerError(message string, cause error) *Error {
	return NewError(ErrServer, message, cause)
}

// NewCancelledError creates a new cancellation error
func NewCancelledError(message string, cause error) *Error {
	return NewError(ErrCancelled, message, cause)
}

// TypeOf returns the type of the first *Error in err's chain, or "".
func TypeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsPortExhaustion checks if the error is a port exhaustion error
func IsPortExhaustion(err error) bool {
	return TypeOf(err) == ErrPortExhaustion
}

// IsMalformedInput checks if the error is a malformed input error
func IsMalformedInput(err error) bool {
	return TypeOf(err) == ErrMalformedInput
}

// IsListenerStart checks if the error is a listener start error
func IsListenerStart(err error) bool {
	return TypeOf(err) == ErrListenerStart
}

// IsCallbackParse checks if the error is a callback parse error
func IsCallbackParse(err error) bool {
	return TypeOf(err) == ErrCallbackParse
}

// IsProviderError checks if the error is a provider error
func IsProviderError(err error) bool {
	return TypeOf(err) == ErrProviderError
}

// IsLaunchFailure checks if the error is a launch failure error
func IsLaunchFailure(err error) bool {
	return TypeOf(err) == ErrLaunchFailure
}

// IsTimeout checks if the error is a timeout error
func IsTimeout(err error) bool {
	return TypeOf(err) == ErrTimeout
}

// IsServer checks if the error is a server error
func IsServer(err error) bool {
	return TypeOf(err) == ErrServer
}

// IsCancelled checks if the error is a cancellation error
func IsCancelled(err error) bool {
	return TypeOf(err) == ErrCancelled
}
