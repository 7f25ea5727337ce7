// Package oauth runs the OAuth2 authorization flow that gives the web UI its
// access token.
//
// A Flow starts an Attempt by opening the provider's authorization URL in
// the browser. The provider redirects to geotag://oauth2 (or to the loopback
// CallbackServer) and the redirect is handed to Flow.HandleCallback. For the
// implicit grant ("token") the access token is read from the redirect; for
// the code grant the code is exchanged at the token endpoint with PKCE.
//
// Only the most recent attempt is current. Starting a new one supersedes the
// previous attempt, which still completes but whose result is not delivered.
// Results are delivered through a foreground.Dispatcher so that presentation
// state is only touched from one goroutine.
//
// Access tokens never appear in logs. TokenCache keeps tokens between runs
// in owner-only files.
package oauth
