package events

import (
	"time"
)

// EventType represents the severity of an event.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events that may require attention.
	EventTypeWarning EventType = "Warning"
)

// EventReason represents the reason code for an event.
type EventReason string

// Server lifecycle event reasons
const (
	// ReasonConfigInvalid indicates settings could not be resolved.
	ReasonConfigInvalid EventReason = "ConfigInvalid"

	// ReasonServerRemote indicates no local server is spawned and the
	// configured endpoint is used as is.
	ReasonServerRemote EventReason = "ServerRemote"

	// ReasonServerStarting indicates the server process was launched.
	ReasonServerStarting EventReason = "ServerStarting"

	// ReasonServerReady indicates the server endpoint answered.
	ReasonServerReady EventReason = "ServerReady"

	// ReasonServerSpawnFailed indicates the server process could not be launched.
	ReasonServerSpawnFailed EventReason = "ServerSpawnFailed"

	// ReasonServerStartupFailed indicates the server exited unexpectedly.
	ReasonServerStartupFailed EventReason = "ServerStartupFailed"

	// ReasonServerTimeout indicates the endpoint never answered in time.
	ReasonServerTimeout EventReason = "ServerTimeout"

	// ReasonServerStopped indicates the server exited after being asked to.
	ReasonServerStopped EventReason = "ServerStopped"
)

// Authorization event reasons
const (
	ReasonAuthStarted    EventReason = "AuthStarted"
	ReasonAuthSucceeded  EventReason = "AuthSucceeded"
	ReasonAuthFailed     EventReason = "AuthFailed"
	ReasonAuthSuperseded EventReason = "AuthSuperseded"
)

// Page message event reasons
const (
	ReasonDataPublished   EventReason = "DataPublished"
	ReasonDataRejected    EventReason = "DataRejected"
	ReasonOEmbedRequested EventReason = "OEmbedRequested"
)

// EventData carries the values a message template may reference.
type EventData struct {
	// Endpoint is the server URL involved in the event.
	Endpoint string

	// Error contains error information for failure events.
	Error string

	// ExitCode is the server's exit status, -1 when killed by a signal.
	ExitCode int

	// Duration is how long an operation took or was allowed to take.
	Duration time.Duration

	// FlowID identifies an authorization attempt.
	FlowID string

	// Features is the number of features in a published payload.
	Features int

	// Output holds the last lines the server wrote before exiting.
	Output []string
}

// GetEventType returns the severity associated with reason.
func GetEventType(reason EventReason) EventType {
	switch reason {
	case ReasonConfigInvalid,
		ReasonServerSpawnFailed,
		ReasonServerStartupFailed,
		ReasonServerTimeout,
		ReasonAuthFailed,
		ReasonDataRejected:
		return EventTypeWarning
	default:
		return EventTypeNormal
	}
}
