// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowerrors "github.com/stacklok/loopback-oauth/pkg/errors"
)

func TestFlowResult_Err(t *testing.T) {
	t.Parallel()

	const redirectURI = "http://127.0.0.1:49152"

	tests := []struct {
		name     string
		result   FlowResult
		wantType string
		wantMsg  string
	}{
		{
			name:   "success has no error",
			result: Success("AUTH123", "xyz123", redirectURI),
		},
		{
			name:     "timeout",
			result:   Timeout(redirectURI),
			wantType: flowerrors.ErrTimeout,
		},
		{
			name:     "provider error",
			result:   Failure(flowerrors.ErrProviderError, "access_denied", redirectURI),
			wantType: flowerrors.ErrProviderError,
			wantMsg:  "access_denied",
		},
		{
			name:     "port exhaustion",
			result:   Failure(flowerrors.ErrPortExhaustion, ErrorNoAvailablePort, ""),
			wantType: flowerrors.ErrPortExhaustion,
			wantMsg:  ErrorNoAvailablePort,
		},
		{
			name:     "listener start",
			result:   Failure(flowerrors.ErrListenerStart, ErrorServerStartFailed, redirectURI),
			wantType: flowerrors.ErrListenerStart,
			wantMsg:  ErrorServerStartFailed,
		},
		{
			name:     "callback parse",
			result:   Failure(flowerrors.ErrCallbackParse, ErrorCallbackParseFailed, redirectURI),
			wantType: flowerrors.ErrCallbackParse,
			wantMsg:  ErrorCallbackParseFailed,
		},
		{
			name:     "server error",
			result:   Failure(flowerrors.ErrServer, "accept tcp: use of closed network connection", redirectURI),
			wantType: flowerrors.ErrServer,
			wantMsg:  "use of closed network connection",
		},
		{
			name:     "cancelled",
			result:   Failure(flowerrors.ErrCancelled, ErrorFlowCancelled, redirectURI),
			wantType: flowerrors.ErrCancelled,
			wantMsg:  ErrorFlowCancelled,
		},
		{
			name:     "untyped failure defaults to provider error",
			result:   FlowResult{Outcome: OutcomeFailure, Error: "server_error"},
			wantType: flowerrors.ErrProviderError,
			wantMsg:  "server_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.result.Err()
			if tt.wantType == "" {
				assert.NoError(t, err)
				assert.True(t, tt.result.IsSuccess())
				return
			}
			require.Error(t, err)
			assert.False(t, tt.result.IsSuccess())
			assert.Equal(t, tt.wantType, flowerrors.TypeOf(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestFlowResult_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Success("AUTH123", "xyz123", "http://127.0.0.1:49152"))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"outcome":"success","code":"AUTH123","state":"xyz123","redirect_uri":"http://127.0.0.1:49152"}`,
		string(data))

	data, err = json.Marshal(Failure(flowerrors.ErrPortExhaustion, ErrorNoAvailablePort, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"outcome":"failure","error":"no available port"}`, string(data))
}
