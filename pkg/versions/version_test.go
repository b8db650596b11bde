// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) { //nolint:paralleltest // Modifies global variables
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})

	tests := []struct {
		name          string
		version       string
		commit        string
		buildDate     string
		wantVersion   string
		wantBuildDate string
	}{
		{
			name:          "release build",
			version:       "v1.2.3",
			commit:        "abc123def456789",
			buildDate:     "2025-03-01T10:20:30Z",
			wantVersion:   "v1.2.3",
			wantBuildDate: "2025-03-01 10:20:30 UTC",
		},
		{
			name:          "dev build with commit",
			version:       "dev",
			commit:        "abc123def456789",
			buildDate:     "not-a-date",
			wantVersion:   "build-abc123de",
			wantBuildDate: "not-a-date",
		},
	}

	for _, tt := range tests { //nolint:paralleltest // Modifies global variables
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, BuildDate = tt.version, tt.commit, tt.buildDate

			info := GetVersionInfo()
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.commit, info.Commit)
			assert.Equal(t, tt.wantBuildDate, info.BuildDate)
			assert.Equal(t, runtime.Version(), info.GoVersion)
			assert.Equal(t, fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), info.Platform)
		})
	}

	t.Run("dev build without commit", func(t *testing.T) {
		Version, Commit, BuildDate = "dev", unknownStr, unknownStr
		assert.True(t, strings.HasPrefix(GetVersionInfo().Version, "build-"))
	})
}

func TestFromBuildSettings(t *testing.T) {
	t.Parallel()

	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2025-03-01T10:20:30Z"},
		{Key: "GOOS", Value: "linux"},
	}

	commit, date := fromBuildSettings(settings, unknownStr, unknownStr)
	assert.Equal(t, "0123456789abcdef", commit)
	assert.Equal(t, "2025-03-01T10:20:30Z", date)

	commit, date = fromBuildSettings(settings, "fixed", "2024-01-01T00:00:00Z")
	assert.Equal(t, "fixed", commit)
	assert.Equal(t, "2024-01-01T00:00:00Z", date)
}
