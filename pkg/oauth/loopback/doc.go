// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package loopback runs the local half of an OAuth 2.0 authorization code
// flow for native applications (RFC 8252 loopback redirect).
//
// A flow binds a one-shot HTTP listener on http://127.0.0.1:<port>, opens the
// provider's authorization page in the user's browser with that address as
// the redirect URI, and waits for the provider to redirect back:
//
//	coord, err := loopback.NewCoordinator(config.DefaultFlowConfig(), browser.NewSystemLauncher())
//	if err != nil {
//		return err
//	}
//	result, err := coord.StartFlow(ctx, loopback.FlowRequest{
//		AuthURL:  "https://accounts.example.com/o/oauth2/auth",
//		ClientID: "my-client",
//		Scope:    "openid email",
//		State:    state,
//	})
//
// Every flow ends in exactly one FlowResult: success (an authorization code),
// failure (provider error, listener failure, malformed callback) or timeout.
// Caller mistakes (an unparsable authorization URL) and a browser that cannot
// be launched are returned as errors instead.
//
// A flow moves through Idle, PortAllocated, AwaitingCallback and Completed,
// never revisiting a state.
//
// The package does not exchange the code for tokens and does not validate
// the returned state; both are the caller's job.
package loopback
