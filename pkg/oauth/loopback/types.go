// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	flowerrors "github.com/stacklok/loopback-oauth/pkg/errors"
)

// Outcome is the kind of a FlowResult.
type Outcome string

const (
	// OutcomeSuccess means the provider redirected back with a code
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means the flow ended without a code
	OutcomeFailure Outcome = "failure"
	// OutcomeTimeout means no callback arrived before the deadline
	OutcomeTimeout Outcome = "timeout"
)

// Error values carried by failure results produced by this package. Provider
// errors are carried verbatim instead.
const (
	ErrorNoAvailablePort     = "no available port"
	ErrorServerStartFailed   = "server start failed"
	ErrorCallbackParseFailed = "callback URL parse failed"
	ErrorUnspecified         = "unspecified"
	ErrorFlowCancelled       = "flow cancelled"
)

// FlowRequest is the caller's input to one flow.
type FlowRequest struct {
	// AuthURL is the provider's authorization endpoint
	AuthURL string `json:"auth_url"`
	// ClientID is the OAuth client identifier
	ClientID string `json:"client_id"`
	// Scope is the space separated scope string
	Scope string `json:"scope"`
	// State is the opaque anti-forgery token echoed back by the provider
	State string `json:"state"`
}

// FlowResult is the single terminal outcome of a flow.
type FlowResult struct {
	Outcome     Outcome `json:"outcome"`
	Code        string  `json:"code,omitempty"`
	State       string  `json:"state,omitempty"`
	Error       string  `json:"error,omitempty"`
	RedirectURI string  `json:"redirect_uri,omitempty"`

	// errorType is the pkg/errors type backing a failure.
	errorType string
}

// Success builds a success result.
func Success(code, state, redirectURI string) FlowResult {
	return FlowResult{
		Outcome:     OutcomeSuccess,
		Code:        code,
		State:       state,
		RedirectURI: redirectURI,
	}
}

// Failure builds a failure result. errorType is one of the pkg/errors types.
func Failure(errorType, msg, redirectURI string) FlowResult {
	return FlowResult{
		Outcome:     OutcomeFailure,
		Error:       msg,
		RedirectURI: redirectURI,
		errorType:   errorType,
	}
}

// Timeout builds a timeout result.
func Timeout(redirectURI string) FlowResult {
	return FlowResult{
		Outcome:     OutcomeTimeout,
		RedirectURI: redirectURI,
		errorType:   flowerrors.ErrTimeout,
	}
}

// IsSuccess reports whether the flow produced an authorization code.
func (r FlowResult) IsSuccess() bool {
	return r.Outcome == OutcomeSuccess
}

// Err converts a non-success result into a typed error; nil for success.
func (r FlowResult) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeTimeout:
		return flowerrors.NewTimeoutError("no callback received before the deadline")
	}

	switch r.errorType {
	case flowerrors.ErrPortExhaustion:
		return flowerrors.NewPortExhaustionError(r.Error, nil)
	case flowerrors.ErrListenerStart:
		return flowerrors.NewListenerStartError(r.Error, nil)
	case flowerrors.ErrCallbackParse:
		return flowerrors.NewCallbackParseError(r.Error, nil)
	case flowerrors.ErrServer:
		return flowerrors.NewServerError(r.Error, nil)
	case flowerrors.ErrCancelled:
		return flowerrors.NewCancelledError(r.Error, nil)
	default:
		return flowerrors.NewProviderError(r.Error)
	}
}
