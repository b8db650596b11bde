// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package loopback

import (
	"fmt"
	"html"
	"net/http"
)

// Page titles double as the indicator strings browsers and tests look for.
const (
	successTitle   = "Authentication Successful"
	failureTitle   = "Authentication Failed"
	completedTitle = "Authentication Already Completed"
)

const pageStyle = `
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
               display: flex; justify-content: center; align-items: center; height: 100vh;
               margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; padding: 2rem; max-width: 600px; }
        .icon { font-size: 3rem; margin-bottom: 1rem; }
        .success { color: #10b981; }
        .error { color: #ef4444; }
        .info { color: #60a5fa; }
        h1 { margin: 0 0 1rem 0; }
        p { color: #888; }`

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>%s
    </style>
</head>
<body>
    <div class="container">
        <div class="icon %s">%s</div>
        <h1>%s</h1>
        %s
    </div>
</body>
</html>`

func renderPage(title, iconClass, icon, body string) string {
	return fmt.Sprintf(pageTemplate, title, pageStyle, iconClass, icon, title, body)
}

var (
	successPage = renderPage(successTitle, "success", "&#10003;",
		"<p>You can close this window and return to the application.</p>")

	completedPage = renderPage(completedTitle, "info", "&#8505;",
		"<p>This sign-in has already finished. You can close this window.</p>")
)

func failurePage(reason string) string {
	return renderPage(failureTitle, "error", "&#10007;", fmt.Sprintf(
		"<p>%s</p>\n        <p>Please close this window and try again in the application.</p>",
		html.EscapeString(reason),
	))
}

// setSecurityHeaders sets the headers shared by every page the listener serves
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline';")
}

// writePage writes a 200 HTML response. It reports write errors instead of
// acting on them: the page is best effort.
func writePage(w http.ResponseWriter, page string) error {
	setSecurityHeaders(w)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page)); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// resultPage picks the page for a captured result.
func resultPage(result FlowResult) string {
	if result.IsSuccess() {
		return successPage
	}
	return failurePage(result.Error)
}
