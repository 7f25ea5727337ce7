package logging

import (
	"context"
	"log/slog"
	"strconv"
)

// AuditEvent describes a security-relevant action such as an authorization
// attempt or a token being handed to the web view.
type AuditEvent struct {
	Action  string
	Outcome string
	FlowID  string
	Target  string
	Details string
}

// Audit logs an AuditEvent at INFO level with an [AUDIT] prefix.
func Audit(ev AuditEvent) {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()
	if logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("subsystem", "Audit"),
		slog.String("action", ev.Action),
		slog.String("outcome", ev.Outcome),
	}
	if ev.FlowID != "" {
		attrs = append(attrs, slog.String("flow_id", ev.FlowID))
	}
	if ev.Target != "" {
		attrs = append(attrs, slog.String("target", ev.Target))
	}
	if ev.Details != "" {
		attrs = append(attrs, slog.String("details", ev.Details))
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, "[AUDIT] "+ev.Action, attrs...)
}

// RedactToken returns a form of a secret that is safe to log: the first four
// characters followed by the length. Short values are fully masked.
func RedactToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	if len(token) <= 8 {
		return "[REDACTED]"
	}
	return token[:4] + "...[REDACTED len=" + strconv.Itoa(len(token)) + "]"
}
