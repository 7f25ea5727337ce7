package supervisor

import (
	"fmt"
	"strings"
	"time"
)

// SpawnError is returned when the server executable cannot be launched, for
// example because it is missing or not executable.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// StartupError reports an unexpected server exit.
type StartupError struct {
	// ExitCode is the exit status, or -1 if the process was killed by a signal.
	ExitCode int
	// BeforeReady is true when the server exited before its endpoint answered.
	BeforeReady bool
	// Output holds the last lines the server wrote.
	Output []string
}

func (e *StartupError) Error() string {
	when := "after becoming ready"
	if e.BeforeReady {
		when = "before becoming ready"
	}
	msg := fmt.Sprintf("server exited with status %d %s", e.ExitCode, when)
	if n := len(e.Output); n > 0 {
		msg += ": " + strings.TrimSpace(e.Output[n-1])
	}
	return msg
}

// TimeoutError is returned when the endpoint never answered in time.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
	// Err is the last probe failure.
	Err error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("server at %s did not become ready within %s", e.Endpoint, e.Timeout)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
