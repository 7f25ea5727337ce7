package supervisor

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// State represents the lifecycle state of the server process.
type State int

const (
	// StateStarting: the process is running and readiness has not been observed.
	StateStarting State = iota
	// StateReady: the endpoint answered.
	StateReady
	// StateStopping: Terminate was called and the process has not exited yet.
	StateStopping
	// StateExited: the process has exited.
	StateExited
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// waitDelay bounds how long Wait keeps copying output after the process
// exits, in case a descendant still holds its stdout open.
const waitDelay = 2 * time.Second

// ExitObserver is called exactly once when the process exits.
type ExitObserver func(*Handle)

// Handle is a spawned server process. It is safe for concurrent use.
type Handle struct {
	cmd    *exec.Cmd
	pid    int
	start  time.Time
	done   chan struct{}
	output *lineRing
	stdout *outputRecorder
	stderr *outputRecorder

	mu          sync.Mutex
	state       State
	wasReady    bool
	requested   bool
	failed      bool
	exitCode    int
	exitErr     error
	observer    ExitObserver
	signalOnce  sync.Once
	observeOnce sync.Once
}

// Spawn starts the process described by spec and returns without waiting
// for it. observer, if non-nil, is called once from a background goroutine
// when the process exits.
func Spawn(spec Spec, observer ExitObserver) (*Handle, error) {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.WaitDelay = waitDelay
	setSysProcAttr(cmd)

	ring := &lineRing{}
	h := &Handle{
		cmd:      cmd,
		done:     make(chan struct{}),
		output:   ring,
		stdout:   &outputRecorder{lines: ring},
		stderr:   &outputRecorder{lines: ring, prefix: "[stderr] "},
		state:    StateStarting,
		exitCode: -1,
		observer: observer,
	}
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: spec.Path, Err: err}
	}
	h.pid = cmd.Process.Pid
	h.start = time.Now()
	logging.Info("Supervisor", "Started %s (pid %d)", spec.Path, h.pid)

	go h.wait()
	return h, nil
}

func (h *Handle) wait() {
	err := h.cmd.Wait()
	h.stdout.flush()
	h.stderr.flush()

	code := -1
	if ps := h.cmd.ProcessState; ps != nil {
		code = ps.ExitCode()
	}

	h.mu.Lock()
	h.state = StateExited
	h.exitCode = code
	h.exitErr = err
	observer := h.observer
	h.mu.Unlock()

	close(h.done)
	logging.Debug("Supervisor", "Process %d exited with status %d after %s", h.pid, code, time.Since(h.start).Round(time.Millisecond))

	h.observeOnce.Do(func() {
		if observer != nil {
			observer(h)
		}
	})
}

// Pid returns the OS process id.
func (h *Handle) Pid() int {
	return h.pid
}

// Done is closed when the process has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Running reports whether the process has not exited yet.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// ExitCode returns the exit status and whether the process has exited.
// A process killed by a signal reports -1.
func (h *Handle) ExitCode() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.state == StateExited
}

// Err returns the error from waiting on the process, nil for a clean exit.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitErr
}

// Output returns the most recent lines written by the process.
func (h *Handle) Output() []string {
	return h.output.snapshot()
}

// markReady records readiness. It reports false if the process had already
// exited, in which case readiness must not be announced.
func (h *Handle) markReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateStarting {
		return false
	}
	h.state = StateReady
	h.wasReady = true
	return true
}

// markFailed records that startup already failed and was reported, so a
// later exit is not reported again. It reports false if the process had
// already exited.
func (h *Handle) markFailed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateStarting {
		return false
	}
	h.failed = true
	return true
}

// exitInfo reports how the process ended, for the exit observer.
func (h *Handle) exitInfo() (code int, wasReady, requested, failed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.wasReady, h.requested, h.failed
}

// Terminate asks the process group to exit with SIGTERM and escalates to
// SIGKILL after grace. It returns once the process has exited or ctx is
// done. Calling it again, or after the process exited, is a no-op apart
// from waiting.
func (h *Handle) Terminate(ctx context.Context, grace time.Duration) error {
	h.mu.Lock()
	if h.state == StateExited {
		h.mu.Unlock()
		return nil
	}
	h.requested = true
	h.state = StateStopping
	h.mu.Unlock()

	h.signalOnce.Do(func() {
		logging.Info("Supervisor", "Stopping process %d", h.pid)
		terminateProcess(h.cmd)
		go func() {
			select {
			case <-h.done:
			case <-time.After(grace):
				logging.Warn("Supervisor", "Process %d did not exit within %s, killing it", h.pid, grace)
				forceKillProcess(h.cmd)
			}
		}()
	})

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
