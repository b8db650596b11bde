// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowerrors "github.com/stacklok/loopback-oauth/pkg/errors"
)

func TestRedirectURIForPort(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "http://127.0.0.1:49152", RedirectURIForPort(49152))
	assert.Equal(t, "http://127.0.0.1", RedirectURITemplate())
}

func TestBuildAuthURL(t *testing.T) {
	t.Parallel()

	redirectURI := RedirectURIForPort(49160)

	t.Run("contains every required parameter", func(t *testing.T) {
		t.Parallel()

		got, err := BuildAuthURL("https://provider.example/auth", "abc", "read write", "xyz123", redirectURI)
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, "https", u.Scheme)
		assert.Equal(t, "provider.example", u.Host)
		assert.Equal(t, "/auth", u.Path)

		q := u.Query()
		assert.Equal(t, "abc", q.Get("client_id"))
		assert.Equal(t, redirectURI, q.Get("redirect_uri"))
		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, "read write", q.Get("scope"))
		assert.Equal(t, "offline", q.Get("access_type"))
		assert.Equal(t, "consent", q.Get("prompt"))
		assert.Equal(t, "xyz123", q.Get("state"))

		assert.Contains(t, got, "client_id=abc")
		assert.Contains(t, got, "scope=read+write")
		assert.Contains(t, got, "state=xyz123")
	})

	t.Run("keeps existing query parameters", func(t *testing.T) {
		t.Parallel()

		got, err := BuildAuthURL("https://provider.example/auth?hd=example.com&login_hint=a%40b.c",
			"abc", "openid", "s", redirectURI)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "https://provider.example/auth?hd=example.com&login_hint=a%40b.c&"))

		q, err := url.ParseQuery(strings.SplitN(got, "?", 2)[1])
		require.NoError(t, err)
		assert.Equal(t, "example.com", q.Get("hd"))
		assert.Equal(t, "a@b.c", q.Get("login_hint"))
		assert.Equal(t, "abc", q.Get("client_id"))
	})

	t.Run("base text is not normalised", func(t *testing.T) {
		t.Parallel()

		for _, base := range []string{
			"HTTPS://Provider.example/auth?x=1",
			"https://provider.example/auth?b=2&a=1&a=%7e&flag",
			"https://provider.example/auth?q=a;b",
		} {
			got, err := BuildAuthURL(base, "abc", "read", "s", redirectURI)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, base+"&"), "got %s", got)
		}
	})

	t.Run("empty values are not omitted", func(t *testing.T) {
		t.Parallel()

		got, err := BuildAuthURL("https://provider.example/auth", "", "", "", redirectURI)
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		q := u.Query()
		for _, key := range []string{"client_id", "scope", "state"} {
			_, ok := q[key]
			assert.True(t, ok, "expected %s to be present", key)
		}
	})

	t.Run("values are encoded", func(t *testing.T) {
		t.Parallel()

		got, err := BuildAuthURL("https://provider.example/auth", "a&b", "x=y", "s t/u", redirectURI)
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, "a&b", u.Query().Get("client_id"))
		assert.Equal(t, "x=y", u.Query().Get("scope"))
		assert.Equal(t, "s t/u", u.Query().Get("state"))
	})

	t.Run("fragment stays at the end", func(t *testing.T) {
		t.Parallel()

		got, err := BuildAuthURL("https://provider.example/auth#section", "abc", "read", "s", redirectURI)
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, "section", u.Fragment)
		assert.Equal(t, "abc", u.Query().Get("client_id"))
	})
}

func TestBuildAuthURL_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
	}{
		{"not a url", "not a url"},
		{"empty", ""},
		{"relative path", "/oauth/authorize"},
		{"missing host", "https://"},
		{"bad escape", "https://provider.example/%zz"},
		{"control character", "https://provider.example/\x7f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildAuthURL(tt.base, "abc", "read", "s", RedirectURIForPort(49152))
			require.Error(t, err)
			assert.True(t, flowerrors.IsMalformedInput(err))
			assert.Empty(t, got)
		})
	}
}
