// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error with cause",
			err:  NewMalformedInputError("invalid authorization URL", errors.New("missing scheme")),
			want: "malformed_input: invalid authorization URL: missing scheme",
		},
		{
			name: "error without cause",
			err:  NewProviderError("access_denied"),
			want: "provider_error: access_denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("exec: \"xdg-open\": executable file not found")
	err := NewLaunchFailureError("failed to open browser", cause)

	assert.Same(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, NewTimeoutError("no callback").Unwrap())
}

func TestTypeChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"port exhaustion", NewPortExhaustionError("no port", nil), IsPortExhaustion, true},
		{"malformed input", NewMalformedInputError("bad url", nil), IsMalformedInput, true},
		{"listener start", NewListenerStartError("bind", nil), IsListenerStart, true},
		{"callback parse", NewCallbackParseError("parse", nil), IsCallbackParse, true},
		{"provider error", NewProviderError("access_denied"), IsProviderError, true},
		{"launch failure", NewLaunchFailureError("open", nil), IsLaunchFailure, true},
		{"timeout", NewTimeoutError("deadline"), IsTimeout, true},
		{"server", NewServerError("accept", nil), IsServer, true},
		{"cancelled", NewCancelledError("flow cancelled", nil), IsCancelled, true},
		{"wrapped", fmt.Errorf("flow: %w", NewLaunchFailureError("open", nil)), IsLaunchFailure, true},
		{"wrong type", NewTimeoutError("deadline"), IsLaunchFailure, false},
		{"plain error", errors.New("boom"), IsTimeout, false},
		{"nil", nil, IsMalformedInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestTypeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrPortExhaustion, TypeOf(NewPortExhaustionError("no port", nil)))
	assert.Empty(t, TypeOf(errors.New("plain")))
}
