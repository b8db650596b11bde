// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stacklok/loopback-oauth/pkg/browser"
	"github.com/stacklok/loopback-oauth/pkg/config"
	"github.com/stacklok/loopback-oauth/pkg/desktop"
	flowerrors "github.com/stacklok/loopback-oauth/pkg/errors"
	"github.com/stacklok/loopback-oauth/pkg/logger"
	"github.com/stacklok/loopback-oauth/pkg/networking"
	"github.com/stacklok/loopback-oauth/pkg/telemetry"
)

//go:generate mockgen -destination=mocks/mock_port_allocator.go -package=mocks -source=coordinator.go PortAllocator

// PortAllocator finds a free loopback port for the callback listener.
type PortAllocator interface {
	Allocate() (int, error)
}

// flow states, used for logging and span events
const (
	stateIdle             = "idle"
	statePortAllocated    = "port_allocated"
	stateAwaitingCallback = "awaiting_callback"
	stateCompleted        = "completed"
)

// outcomeError labels flows that ended with a Go error rather than a result.
const outcomeError = "error"

// bindMu serialises port probing and listener binding across every
// coordinator in the process, so concurrent flows never probe the same free
// port before either has bound it.
var bindMu sync.Mutex

// Coordinator drives loopback flows. It holds no per-flow state, so one
// instance serves the whole application and StartFlow may run concurrently.
type Coordinator struct {
	cfg             *config.FlowConfig
	ports           PortAllocator
	launcher        browser.Launcher
	focuser         desktop.Focuser
	instrumentation *telemetry.FlowInstrumentation
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithPortAllocator replaces the default allocator built from the config's
// port range.
func WithPortAllocator(ports PortAllocator) Option {
	return func(c *Coordinator) {
		c.ports = ports
	}
}

// WithFocuser sets the hook called shortly after the browser was launched.
func WithFocuser(f desktop.Focuser) Option {
	return func(c *Coordinator) {
		c.focuser = f
	}
}

// WithInstrumentation sets the telemetry used for flows.
func WithInstrumentation(fi *telemetry.FlowInstrumentation) Option {
	return func(c *Coordinator) {
		c.instrumentation = fi
	}
}

// NewCoordinator creates a Coordinator. A nil cfg means the defaults.
func NewCoordinator(cfg *config.FlowConfig, launcher browser.Launcher, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		cfg = config.DefaultFlowConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow configuration: %w", err)
	}
	if launcher == nil {
		return nil, errors.New("browser launcher is required")
	}

	c := &Coordinator{
		cfg:      cfg,
		launcher: launcher,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.ports == nil {
		c.ports = networking.NewPortAllocator(cfg.PortRangeStart, cfg.PortRangeEnd)
	}
	if c.focuser == nil {
		c.focuser = desktop.NoopFocuser{}
	}
	if c.instrumentation == nil {
		c.instrumentation = telemetry.NewFlowInstrumentation(nil, nil)
	}
	return c, nil
}

// RedirectURITemplate returns the redirect URI without its runtime port.
func (*Coordinator) RedirectURITemplate() string {
	return RedirectURITemplate()
}

// StartFlow runs one flow and blocks until it completes.
//
// A malformed req.AuthURL and a browser that cannot be launched are returned
// as errors, as is cancellation of ctx. Everything else, including port
// exhaustion, is reported through the returned FlowResult.
func (c *Coordinator) StartFlow(ctx context.Context, req FlowRequest) (*FlowResult, error) {
	ctx, span := c.instrumentation.StartFlow(ctx)

	result, err := c.run(ctx, req, span)

	outcome := outcomeError
	if err == nil {
		outcome = string(result.Outcome)
	}
	span.End(ctx, outcome, err)
	logger.Debugw("flow state", "state", stateCompleted, "outcome", outcome)
	return result, err
}

func (c *Coordinator) run(ctx context.Context, req FlowRequest, span *telemetry.FlowSpan) (*FlowResult, error) {
	logger.Debugw("flow state", "state", stateIdle)

	// Reject caller mistakes before touching the network or the browser.
	if _, err := parseAuthURL(req.AuthURL); err != nil {
		return nil, err
	}

	// The listener's context is cancelled on every return path, which frees
	// the port immediately when the flow ends early.
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	port, results, err := c.bindListener(listenCtx)
	if err != nil {
		logger.Warnw("no loopback port available for the OAuth callback",
			"error", flowerrors.NewPortExhaustionError(ErrorNoAvailablePort, err))
		result := Failure(flowerrors.ErrPortExhaustion, ErrorNoAvailablePort, "")
		return &result, nil
	}
	redirectURI := RedirectURIForPort(port)
	span.SetPort(port)
	span.Event(statePortAllocated)
	logger.Debugw("flow state", "state", statePortAllocated, "port", port)

	authURL, err := BuildAuthURL(req.AuthURL, req.ClientID, req.Scope, req.State, redirectURI)
	if err != nil {
		return nil, err
	}

	// A listener that failed to bind has already published; the browser
	// would only land on a dead port.
	select {
	case result := <-results:
		return &result, nil
	default:
	}

	logger.Infof("Opening browser to: %s", authURL)
	if err := c.launcher.OpenURL(authURL); err != nil {
		return nil, flowerrors.NewLaunchFailureError("failed to open browser", err)
	}

	time.AfterFunc(c.cfg.FocusDelay, func() {
		if err := c.focuser.Focus(); err != nil {
			logger.Warnf("Failed to focus application window: %v", err)
		}
	})

	span.Event(stateAwaitingCallback)
	logger.Debugw("flow state", "state", stateAwaitingCallback, "redirect_uri", redirectURI)
	logger.Info("Waiting for OAuth callback...")

	wait := time.NewTimer(c.cfg.WaitTimeout())
	defer wait.Stop()

	select {
	case result := <-results:
		// The listener only sees cancellation through ctx.
		if result.errorType == flowerrors.ErrCancelled {
			return nil, flowerrors.NewCancelledError(ErrorFlowCancelled, ctx.Err())
		}
		return &result, nil
	case <-wait.C:
		logger.Warnw("timed out waiting for the callback listener", "wait", c.cfg.WaitTimeout())
		result := Timeout(redirectURI)
		return &result, nil
	case <-ctx.Done():
		return nil, flowerrors.NewCancelledError(ErrorFlowCancelled, ctx.Err())
	}
}

// bindListener allocates a port and starts the listener on it while holding
// bindMu, so the port is bound before any other flow probes.
func (c *Coordinator) bindListener(ctx context.Context) (int, <-chan FlowResult, error) {
	bindMu.Lock()
	defer bindMu.Unlock()

	port, err := c.ports.Allocate()
	if err != nil {
		return 0, nil, err
	}

	l := &Listener{
		Port:            port,
		RedirectURI:     RedirectURIForPort(port),
		Timeout:         c.cfg.Timeout,
		ShutdownTimeout: c.cfg.ShutdownTimeout,
	}
	return port, l.Listen(ctx), nil
}

// AsyncResult is what StartFlowAsync delivers.
type AsyncResult struct {
	Result *FlowResult
	Err    error
}

// StartFlowAsync runs StartFlow on its own goroutine so UI hosts never block
// their main loop. The returned channel yields one AsyncResult and is closed.
func (c *Coordinator) StartFlowAsync(ctx context.Context, req FlowRequest) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		defer close(out)
		result, err := c.StartFlow(ctx, req)
		out <- AsyncResult{Result: result, Err: err}
	}()
	return out
}
