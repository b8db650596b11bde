// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-core/logging"

	"github.com/stacklok/loopback-oauth/pkg/logger"
)

func TestSystemLauncher_OpenURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		openErr error
	}{
		{name: "opens url", openErr: nil},
		{name: "propagates open error", openErr: errors.New("no browser found")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var opened string
			l := &SystemLauncher{open: func(url string) error {
				opened = url
				return tt.openErr
			}}

			err := l.OpenURL("https://provider.example/auth?client_id=abc")
			if tt.openErr != nil {
				require.ErrorIs(t, err, tt.openErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "https://provider.example/auth?client_id=abc", opened)
		})
	}
}

func TestManualLauncher_OpenURL(t *testing.T) { //nolint:paralleltest // mutates logger singleton
	prev := logger.Get()
	t.Cleanup(func() { logger.Set(prev) })

	var buf bytes.Buffer
	logger.Set(logging.New(logging.WithOutput(&buf), logging.WithLevel(slog.LevelDebug)))

	require.NoError(t, NewManualLauncher().OpenURL("https://provider.example/auth"))
	assert.Contains(t, buf.String(), "https://provider.example/auth")
}
