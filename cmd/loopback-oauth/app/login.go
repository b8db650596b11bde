// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/loopback-oauth/pkg/config"
	"github.com/stacklok/loopback-oauth/pkg/desktop"
	"github.com/stacklok/loopback-oauth/pkg/logger"
	"github.com/stacklok/loopback-oauth/pkg/oauth/loopback"
)

type loginFlags struct {
	authURL   string
	clientID  string
	scope     string
	state     string
	noBrowser bool
}

func newLoginCmd(launchers launcherFactory) *cobra.Command {
	var flags loginFlags
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Run one authorization code flow and print its result",
		Long: `Opens the provider's authorization page in the browser and waits for the
redirect on a loopback port. The result is printed as JSON on stdout. The command
exits non-zero unless an authorization code was received.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("state") {
				flags.state = uuid.NewString()
				logger.Debugw("generated OAuth state", "state", flags.state)
			}
			return loginCmdFunc(cmd, v, flags, launchers)
		},
	}

	cmd.Flags().StringVar(&flags.authURL, "auth-url", "", "Authorization endpoint of the provider")
	cmd.Flags().StringVar(&flags.clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&flags.scope, "scope", "", "Space separated scopes to request")
	cmd.Flags().StringVar(&flags.state, "state", "", "Opaque state echoed back by the provider (random when not set)")
	cmd.Flags().BoolVar(&flags.noBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	cmd.Flags().Duration(config.KeyTimeout, config.DefaultTimeout, "How long to wait for the redirect")
	_ = cmd.MarkFlagRequired("auth-url")

	if err := v.BindPFlag(config.KeyTimeout, cmd.Flags().Lookup(config.KeyTimeout)); err != nil {
		panic(fmt.Sprintf("binding %s flag: %v", config.KeyTimeout, err))
	}

	return cmd
}

func loginCmdFunc(cmd *cobra.Command, v *viper.Viper, flags loginFlags, launchers launcherFactory) error {
	cfg, err := config.LoadFlowConfig(v)
	if err != nil {
		return err
	}

	coordinator, err := loopback.NewCoordinator(cfg, launchers(flags.noBrowser),
		loopback.WithFocuser(desktop.TerminalFocuser{}))
	if err != nil {
		return err
	}

	result, err := coordinator.StartFlow(cmd.Context(), loopback.FlowRequest{
		AuthURL:  flags.authURL,
		ClientID: flags.clientID,
		Scope:    flags.scope,
		State:    flags.state,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return result.Err()
}
