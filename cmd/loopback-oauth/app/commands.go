// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the loopback-oauth command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/loopback-oauth/pkg/browser"
	"github.com/stacklok/loopback-oauth/pkg/logger"
)

// launcherFactory picks the browser launcher for a login.
type launcherFactory func(noBrowser bool) browser.Launcher

func defaultLauncher(noBrowser bool) browser.Launcher {
	if noBrowser {
		return browser.NewManualLauncher()
	}
	return browser.NewSystemLauncher()
}

// NewRootCmd creates a new root command for the loopback-oauth CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultLauncher)
}

func newRootCmd(launchers launcherFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "loopback-oauth",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Run OAuth authorization code flows through a loopback redirect",
		Long: `loopback-oauth runs the browser leg of an OAuth 2.0 authorization code flow for
native applications. It listens on a free 127.0.0.1 port, opens the provider's
authorization page and reports the code the provider redirects back with.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.AddCommand(newLoginCmd(launchers))
	rootCmd.AddCommand(newRedirectURICmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
