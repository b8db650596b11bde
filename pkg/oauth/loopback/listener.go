// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	flowerrors "github.com/stacklok/loopback-oauth/pkg/errors"
	"github.com/stacklok/loopback-oauth/pkg/logger"
	"github.com/stacklok/loopback-oauth/pkg/networking"
)

const (
	// callbackAuthority is prefixed to the request URI to rebuild the
	// redirect URL the browser called.
	callbackAuthority = "http://" + networking.LoopbackHost

	defaultShutdownTimeout = 5 * time.Second
	requestTimeout         = 10 * time.Second
)

// Listener is a one-shot HTTP responder for the OAuth redirect.
type Listener struct {
	// Port is the loopback port to bind.
	Port int
	// RedirectURI is echoed into every result.
	RedirectURI string
	// Timeout is how long to wait for the redirect.
	Timeout time.Duration
	// ShutdownTimeout bounds the graceful shutdown after the result is known.
	ShutdownTimeout time.Duration
}

// Listen binds the listener's port and returns a channel that receives
// exactly one FlowResult and is then closed.
//
// The bind happens before Listen returns, so a browser launched afterwards
// cannot race the listener. A bind failure is published as a failure result
// right away. Cancelling ctx stops the listener and releases the port.
func (l *Listener) Listen(ctx context.Context) <-chan FlowResult {
	results := make(chan FlowResult, 1)

	ln, err := net.Listen("tcp", networking.LoopbackAddress(l.Port))
	if err != nil {
		logger.Warnw("callback listener failed to start", "port", l.Port, "error", err)
		results <- Failure(flowerrors.ErrListenerStart, ErrorServerStartFailed, l.RedirectURI)
		close(results)
		return results
	}

	logger.Debugw("callback listener started", "address", ln.Addr().String())
	go l.serve(ctx, ln, results)
	return results
}

// serve runs the HTTP server on ln until one result is known, publishes it
// and then shuts the server down.
func (l *Listener) serve(ctx context.Context, ln net.Listener, results chan<- FlowResult) {
	c := newCapture(l.RedirectURI)
	srv := &http.Server{
		Handler:           c.routes(),
		ReadHeaderTimeout: requestTimeout,
		WriteTimeout:      requestTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	timer := time.NewTimer(l.Timeout)
	defer timer.Stop()

	var result FlowResult
	select {
	case result = <-c.captured:
	case <-timer.C:
		logger.Debugw("no callback received before the deadline", "timeout", l.Timeout)
		result = c.finish(Timeout(l.RedirectURI))
	case err := <-serveErr:
		logger.Warnw("callback server failed", "error", err)
		result = c.finish(Failure(flowerrors.ErrServer, err.Error(), l.RedirectURI))
	case <-ctx.Done():
		logger.Debugw("callback listener cancelled", "reason", ctx.Err())
		result = c.finish(Failure(flowerrors.ErrCancelled, ErrorFlowCancelled, l.RedirectURI))
	}

	// Closing the socket releases the port before the caller sees the
	// result. Idle browser preconnections must not delay publication, so the
	// graceful shutdown of in-flight responses runs afterwards.
	_ = ln.Close()
	results <- result
	close(results)

	l.shutdown(srv)
}

func (l *Listener) shutdown(srv *http.Server) {
	timeout := l.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Failed to shutdown OAuth callback server: %v", err)
		_ = srv.Close()
	}
}

// capture holds the single-result state shared by the HTTP handler and the
// listener loop. Whoever runs once first decides the result.
type capture struct {
	redirectURI string
	once        sync.Once
	captured    chan FlowResult
}

func newCapture(redirectURI string) *capture {
	return &capture{
		redirectURI: redirectURI,
		captured:    make(chan FlowResult, 1),
	}
}

func (c *capture) routes() http.Handler {
	r := chi.NewRouter()
	// Browsers fetch the favicon next to the redirect; it must not consume
	// the capture.
	r.Get("/favicon.ico", http.NotFound)
	r.HandleFunc("/*", c.handleCallback)
	return r
}

// finish publishes fallback unless a result was already captured, and
// returns whichever result won.
func (c *capture) finish(fallback FlowResult) FlowResult {
	c.once.Do(func() {
		c.captured <- fallback
	})
	return <-c.captured
}

func (c *capture) handleCallback(w http.ResponseWriter, r *http.Request) {
	result := c.classify(r)

	handled := false
	c.once.Do(func() {
		handled = true
		// The page goes out before the result is published.
		if err := writePage(w, resultPage(result)); err != nil {
			logger.Warnf("Failed to write callback page: %v", err)
		}
		c.captured <- result
	})
	if handled {
		logger.Debugw("callback captured", "outcome", result.Outcome)
		return
	}

	logger.Debugw("ignoring callback after the flow completed", "path", r.URL.Path)
	if err := writePage(w, completedPage); err != nil {
		logger.Warnf("Failed to write callback page: %v", err)
	}
}

// classify turns the redirect request into a result.
func (c *capture) classify(r *http.Request) FlowResult {
	callbackURL, err := url.Parse(callbackAuthority + r.RequestURI)
	if err != nil {
		logger.Warnw("failed to parse callback URL", "error", err)
		return Failure(flowerrors.ErrCallbackParse, ErrorCallbackParseFailed, c.redirectURI)
	}
	query := parseCallbackQuery(callbackURL.RawQuery)

	if code, ok := lastValue(query, "code"); ok {
		state, _ := lastValue(query, "state")
		return Success(code, state, c.redirectURI)
	}

	providerErr, _ := lastValue(query, "error")
	if providerErr == "" {
		providerErr = ErrorUnspecified
	}
	return Failure(flowerrors.ErrProviderError, providerErr, c.redirectURI)
}

// lastValue returns the last value of a repeated query key.
func lastValue(query url.Values, key string) (string, bool) {
	values, ok := query[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

// parseCallbackQuery splits a form-encoded query on '&' only. Unlike
// url.ParseQuery it never fails: ';' is part of a value and malformed
// escapes are kept verbatim.
func parseCallbackQuery(rawQuery string) url.Values {
	query := make(url.Values)
	for pair := range strings.SplitSeq(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		query.Add(decodeQueryComponent(key), decodeQueryComponent(value))
	}
	return query
}

// decodeQueryComponent decodes '+' and valid %XX escapes.
func decodeQueryComponent(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '+':
			b.WriteByte(' ')
		case '%':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 2
					continue
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
