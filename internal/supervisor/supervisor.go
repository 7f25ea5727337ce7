package supervisor

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/config"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/events"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// Publisher receives startup events.
type Publisher interface {
	Publish(events.StartupEvent)
}

// Options configures a Supervisor.
type Options struct {
	// InstallationRoot is the directory holding server.bundle/.
	InstallationRoot string
	// Namespace prefixes derived environment variables.
	Namespace string
	// Readiness bounds the wait for the endpoint.
	Readiness config.ReadinessConfig
	// GracePeriod is the delay between SIGTERM and SIGKILL.
	GracePeriod time.Duration
	// HTTPClient probes the endpoint. Defaults to a client with a short timeout.
	HTTPClient *http.Client
	// BaseEnv returns the environment the server inherits. Defaults to os.Environ.
	BaseEnv func() []string
}

func (o *Options) setDefaults() {
	if o.Namespace == "" {
		o.Namespace = config.DefaultEnvNamespace
	}
	if o.Readiness.Timeout <= 0 {
		o.Readiness.Timeout = config.DefaultReadinessTimeout
	}
	if o.Readiness.InitialInterval <= 0 {
		o.Readiness.InitialInterval = config.DefaultReadinessInitialInterval
	}
	if o.Readiness.MaxInterval <= 0 {
		o.Readiness.MaxInterval = config.DefaultReadinessMaxInterval
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = config.DefaultShutdownGracePeriod
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 2 * time.Second}
	}
	if o.BaseEnv == nil {
		o.BaseEnv = os.Environ
	}
}

// Supervisor owns at most one server process per run.
type Supervisor struct {
	opts     Options
	pub      Publisher
	messages *events.MessageTemplateEngine

	mu     sync.Mutex
	handle *Handle
	wg     sync.WaitGroup
}

// New returns a Supervisor publishing to pub.
func New(opts Options, pub Publisher) *Supervisor {
	opts.setDefaults()
	return &Supervisor{opts: opts, pub: pub, messages: events.NewMessageTemplateEngine()}
}

// Start publishes Ready immediately when res does not ask for a local
// server. Otherwise it spawns the server and waits for readiness in the
// background; the outcome is published on the bus. The returned error is
// non-nil only when the process could not be launched, and that error is
// also published.
func (s *Supervisor) Start(ctx context.Context, res *config.Resolution) error {
	if !res.Local {
		logging.Info("Supervisor", "Using remote server at %s", res.Endpoint)
		s.pub.Publish(events.Ready{Endpoint: res.Endpoint})
		return nil
	}

	spec := NewSpec(s.opts.InstallationRoot, s.opts.Namespace, s.opts.BaseEnv(), res.Server)
	h, err := s.Spawn(spec)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.AwaitReadiness(ctx, h, res.Endpoint)
	}()
	return nil
}

// Spawn launches spec and records the handle. A launch failure is published
// as a SpawnErrorKind failure and never retried.
func (s *Supervisor) Spawn(spec Spec) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil && s.handle.Running() {
		return nil, errors.New("server process already running")
	}

	h, err := Spawn(spec, s.observeExit)
	if err != nil {
		logging.Error("Supervisor", err, "Failed to launch server")
		s.pub.Publish(events.Failure{Kind: events.SpawnErrorKind, Err: err})
		return nil, err
	}
	s.handle = h
	return h, nil
}

// observeExit interprets a process exit. It runs exactly once per handle.
func (s *Supervisor) observeExit(h *Handle) {
	code, wasReady, requested, failed := h.exitInfo()

	switch {
	case requested:
		logging.Info("Supervisor", "%s", s.messages.Render(events.ReasonServerStopped, events.EventData{ExitCode: code}))
	case failed:
		logging.Info("Supervisor", "Server exited with status %d after a failed startup", code)
	case !wasReady:
		err := &StartupError{ExitCode: code, BeforeReady: true, Output: h.Output()}
		logging.Error("Supervisor", err, "Server exited during startup")
		s.pub.Publish(events.Failure{Kind: events.StartupErrorKind, Err: err})
	case code != 0:
		err := &StartupError{ExitCode: code, Output: h.Output()}
		logging.Error("Supervisor", err, "Server exited unexpectedly")
		s.pub.Publish(events.Failure{Kind: events.StartupErrorKind, Err: err})
	default:
		logging.Info("Supervisor", "Server exited cleanly")
	}
}

// Handle returns the current process handle, or nil if nothing was spawned.
func (s *Supervisor) Handle() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Terminate stops the server, if one was spawned and is still running, and
// waits for background readiness polling to finish. It is safe to call more
// than once.
func (s *Supervisor) Terminate(ctx context.Context) error {
	h := s.Handle()
	var err error
	if h != nil {
		err = h.Terminate(ctx, s.opts.GracePeriod)
	}

	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// endpointString renders u for messages, tolerating nil.
func endpointString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
