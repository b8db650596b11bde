// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/loopback-oauth/pkg/oauth/loopback"
)

func newRedirectURICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redirect-uri",
		Short: "Print the redirect URI to register with the provider",
		Long: `Prints the loopback redirect URI without a port. Providers that follow RFC 8252
accept any port on a registered loopback redirect URI.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), loopback.RedirectURITemplate())
		},
	}
}
