// Package app provides application bootstrap and the shell that ties the
// server supervisor, the OAuth2 flow and the event router to a presenter.
//
// # Bootstrap
//
// NewApplication loads config.yaml (defaults when missing), the settings
// file with environment overrides, and initializes logging. Run then starts
// either console mode, where a ConsolePresenter writes to the terminal, or
// desktop mode, where the web view presenter from package desktop is used.
//
// # Shell
//
// The Shell owns a foreground loop. Startup events from the supervisor,
// OAuth2 results and routed events are all handled on that loop, so the
// Presenter is only ever called from one goroutine. The sequence is:
//
//  1. Resolve settings. Failures are published as configuration errors.
//  2. Start the server, or use the remote endpoint as is.
//  3. On Ready, Presenter.Load the endpoint.
//  4. On PageLoaded, use the cached token or start an authorization.
//  5. On a token, Presenter.SetAccessToken.
//
// Every failure is rendered with the event message templates and shown with
// Presenter.ShowError.
package app
