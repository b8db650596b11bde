// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	flowerrors "github.com/stacklok/loopback-oauth/pkg/errors"
	"github.com/stacklok/loopback-oauth/pkg/networking"
)

// redirectURITemplate is the redirect URI without its runtime port.
const redirectURITemplate = "http://" + networking.LoopbackHost

// RedirectURITemplate returns the scheme and host of every redirect URI this
// package produces. The port is only known once a flow has started, so this
// is meant for documentation and provider registration screens.
func RedirectURITemplate() string {
	return redirectURITemplate
}

// RedirectURIForPort returns the loopback redirect URI for a callback port.
func RedirectURIForPort(port int) string {
	return "http://" + net.JoinHostPort(networking.LoopbackHost, strconv.Itoa(port))
}

// parseAuthURL checks that base is an absolute URL with a host.
func parseAuthURL(base string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, flowerrors.NewMalformedInputError("invalid authorization URL", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, flowerrors.NewMalformedInputError(
			"invalid authorization URL",
			errors.New("URL must be absolute with a scheme and host"),
		)
	}
	return u, nil
}

// BuildAuthURL returns the authorization URL the browser is sent to. base is
// kept verbatim, including its query and fragment; client_id, redirect_uri,
// response_type=code, scope, access_type=offline, prompt=consent and state
// are appended, empty values included.
func BuildAuthURL(base, clientID, scope, state, redirectURI string) (string, error) {
	if _, err := parseAuthURL(base); err != nil {
		return "", err
	}

	// The caller's text is kept byte for byte. AuthCodeURL appends to the
	// raw string, so the fragment has to go last.
	endpoint, fragment, hasFragment := strings.Cut(base, "#")

	cfg := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Endpoint:    oauth2.Endpoint{AuthURL: endpoint},
	}

	// scope and state are set explicitly: AuthCodeURL drops them when empty.
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("scope", scope),
		oauth2.SetAuthURLParam("state", state),
	)
	if hasFragment {
		authURL += "#" + fragment
	}
	return authURL, nil
}
