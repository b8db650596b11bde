// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config provides the tunables of a loopback OAuth flow.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stacklok/loopback-oauth/pkg/networking"
)

// EnvPrefix is the prefix of environment variables read by LoadFlowConfig,
// e.g. LOOPBACK_OAUTH_TIMEOUT=2m.
const EnvPrefix = "LOOPBACK_OAUTH"

// Viper keys
const (
	KeyTimeout         = "timeout"
	KeyGracePeriod     = "grace-period"
	KeyFocusDelay      = "focus-delay"
	KeyShutdownTimeout = "shutdown-timeout"
	KeyPortRangeStart  = "port-range-start"
	KeyPortRangeEnd    = "port-range-end"
)

// Defaults
const (
	DefaultTimeout         = 5 * time.Minute
	DefaultGracePeriod     = 2 * time.Second
	DefaultFocusDelay      = 500 * time.Millisecond
	DefaultShutdownTimeout = 5 * time.Second
)

// FlowConfig holds the knobs of a single login flow.
type FlowConfig struct {
	// Timeout is the one deadline of a flow. The callback listener gives up
	// after it, and the coordinator waits Timeout+GracePeriod at most.
	Timeout time.Duration

	// GracePeriod covers delivery of the listener's result to the coordinator.
	GracePeriod time.Duration

	// FocusDelay is how long after launching the browser the host window is
	// brought back to the foreground.
	FocusDelay time.Duration

	// ShutdownTimeout bounds the graceful shutdown of the callback server.
	ShutdownTimeout time.Duration

	// PortRangeStart and PortRangeEnd bound the probed ports, end exclusive.
	PortRangeStart int
	PortRangeEnd   int
}

// DefaultFlowConfig returns the configuration used when nothing is overridden.
func DefaultFlowConfig() *FlowConfig {
	return &FlowConfig{
		Timeout:         DefaultTimeout,
		GracePeriod:     DefaultGracePeriod,
		FocusDelay:      DefaultFocusDelay,
		ShutdownTimeout: DefaultShutdownTimeout,
		PortRangeStart:  networking.DynamicPortStart,
		PortRangeEnd:    networking.DynamicPortEnd,
	}
}

// SetDefaults registers the default values and env binding on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultFlowConfig()
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyGracePeriod, d.GracePeriod)
	v.SetDefault(KeyFocusDelay, d.FocusDelay)
	v.SetDefault(KeyShutdownTimeout, d.ShutdownTimeout)
	v.SetDefault(KeyPortRangeStart, d.PortRangeStart)
	v.SetDefault(KeyPortRangeEnd, d.PortRangeEnd)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadFlowConfig reads a FlowConfig out of v and validates it.
func LoadFlowConfig(v *viper.Viper) (*FlowConfig, error) {
	SetDefaults(v)

	cfg := &FlowConfig{
		Timeout:         v.GetDuration(KeyTimeout),
		GracePeriod:     v.GetDuration(KeyGracePeriod),
		FocusDelay:      v.GetDuration(KeyFocusDelay),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		PortRangeStart:  v.GetInt(KeyPortRangeStart),
		PortRangeEnd:    v.GetInt(KeyPortRangeEnd),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a flow.
func (c *FlowConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if c.GracePeriod < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyGracePeriod, c.GracePeriod)
	}
	if c.FocusDelay < 0 {
		return fmt.Errorf("%s must not be negative, got %s", KeyFocusDelay, c.FocusDelay)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyShutdownTimeout, c.ShutdownTimeout)
	}
	if c.PortRangeStart < 1 || c.PortRangeEnd > 65536 || c.PortRangeStart >= c.PortRangeEnd {
		return fmt.Errorf("invalid port range [%d, %d)", c.PortRangeStart, c.PortRangeEnd)
	}
	return nil
}

// WaitTimeout is how long the coordinator waits for the listener's result.
func (c *FlowConfig) WaitTimeout() time.Duration {
	return c.Timeout + c.GracePeriod
}
