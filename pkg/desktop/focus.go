// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package desktop holds the hooks a host application provides so that a
// login flow can hand control back to it once the browser is open.
package desktop

import (
	"os"

	"golang.org/x/term"

	"github.com/stacklok/loopback-oauth/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_focuser.go -package=mocks -source=focus.go Focuser

// Focuser brings the host application's window back to the foreground.
type Focuser interface {
	Focus() error
}

// FocuserFunc adapts a plain function to the Focuser interface.
type FocuserFunc func() error

// Focus implements Focuser.
func (f FocuserFunc) Focus() error {
	return f()
}

// NoopFocuser is used by hosts without a window to focus.
type NoopFocuser struct{}

// Focus implements Focuser.
func (NoopFocuser) Focus() error {
	return nil
}

// TerminalFocuser is the focuser for CLI hosts. There is no window to raise,
// so it rings the terminal bell when the output is a terminal and reminds the
// user where the flow result will appear.
type TerminalFocuser struct {
	// Out is the terminal to ring; nil means os.Stderr.
	Out *os.File
}

// Focus implements Focuser.
func (f TerminalFocuser) Focus() error {
	out := f.Out
	if out == nil {
		out = os.Stderr
	}
	if term.IsTerminal(int(out.Fd())) {
		if _, err := out.WriteString("\a"); err != nil {
			return err
		}
	}
	logger.Info("Waiting for the authorization redirect; return to this terminal once the browser says you are done")
	return nil
}
