package events

import (
	"fmt"
	"net/url"
)

// ErrorKind classifies a startup failure.
type ErrorKind int

const (
	// ConfigErrorKind: a required setting was missing or invalid.
	ConfigErrorKind ErrorKind = iota
	// SpawnErrorKind: the server executable could not be launched.
	SpawnErrorKind
	// StartupErrorKind: the server exited unexpectedly.
	StartupErrorKind
	// TimeoutErrorKind: the server never answered before the deadline.
	TimeoutErrorKind
)

// String makes ErrorKind satisfy the fmt.Stringer interface.
func (k ErrorKind) String() string {
	switch k {
	case ConfigErrorKind:
		return "config"
	case SpawnErrorKind:
		return "spawn"
	case StartupErrorKind:
		return "startup"
	case TimeoutErrorKind:
		return "timeout"
	default:
		return "unknown"
	}
}

// Reason maps the kind to the event reason used for its message.
func (k ErrorKind) Reason() EventReason {
	switch k {
	case ConfigErrorKind:
		return ReasonConfigInvalid
	case SpawnErrorKind:
		return ReasonServerSpawnFailed
	case TimeoutErrorKind:
		return ReasonServerTimeout
	default:
		return ReasonServerStartupFailed
	}
}

// StartupEvent is either Ready or Failure. They are the only values the
// supervisor publishes.
type StartupEvent interface {
	startupEvent()
}

// Ready reports that Endpoint can be loaded.
type Ready struct {
	Endpoint *url.URL
}

// Failure reports a startup or process-lifetime error.
type Failure struct {
	Kind ErrorKind
	Err  error
}

func (Ready) startupEvent()   {}
func (Failure) startupEvent() {}

func (r Ready) String() string {
	return fmt.Sprintf("Ready(%s)", r.Endpoint)
}

func (f Failure) String() string {
	return fmt.Sprintf("Failure(%s: %v)", f.Kind, f.Err)
}

// Error makes Failure usable as an error value.
func (f Failure) Error() string {
	if f.Err == nil {
		return f.Kind.String() + " error"
	}
	return f.Err.Error()
}

// Unwrap returns the underlying error.
func (f Failure) Unwrap() error {
	return f.Err
}
