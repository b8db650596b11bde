// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package browser opens authorization URLs in the user's browser.
package browser

import (
	"os"

	"github.com/pkg/browser"

	"github.com/stacklok/loopback-oauth/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_launcher.go -package=mocks -source=browser.go Launcher

// Launcher opens a URL for the user.
type Launcher interface {
	OpenURL(url string) error
}

// SystemLauncher opens URLs with the operating system's default browser.
type SystemLauncher struct {
	open func(url string) error
}

// NewSystemLauncher creates a launcher backed by the OS "open URL" facility.
func NewSystemLauncher() *SystemLauncher {
	// xdg-open and friends may print to stdout, which carries flow results.
	browser.Stdout = os.Stderr
	return &SystemLauncher{open: browser.OpenURL}
}

// OpenURL implements Launcher.
func (l *SystemLauncher) OpenURL(url string) error {
	logger.Debugw("opening browser", "url", url)
	return l.open(url)
}

// ManualLauncher never starts a browser. It logs the URL so the user can
// open it themselves, e.g. on a headless machine or over SSH.
type ManualLauncher struct{}

// NewManualLauncher creates a ManualLauncher.
func NewManualLauncher() *ManualLauncher {
	return &ManualLauncher{}
}

// OpenURL implements Launcher.
func (*ManualLauncher) OpenURL(url string) error {
	logger.Infof("Please open this URL in your browser: %s", url)
	return nil
}
