// Package logging provides the structured logging used across geotag.
//
// It is a thin layer over log/slog that tags every entry with a subsystem
// name, so that output from the supervisor, the authorization flow and the
// event router can be filtered independently.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Supervisor", "Spawning %s", path)
//	logging.Debug("Config", "Resolved %d server settings", n)
//	logging.Error("OAuth2", err, "Token exchange failed")
//
// # Secrets
//
// Access tokens and client secrets must never be logged verbatim. Use
// RedactToken for anything derived from a credential, and Audit for
// authorization outcomes:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:  "token_acquired",
//	    Outcome: "success",
//	    FlowID:  attempt.ID,
//	})
package logging
