package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/events"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// errProcessExited stops polling once the server has exited; the exit
// observer reports that case.
var errProcessExited = errors.New("server process exited")

// AwaitReadiness polls endpoint until it answers with a 2xx status, then
// publishes Ready. It publishes a TimeoutErrorKind failure if the deadline
// passes first; h is left running but its later exit is not reported. If h
// exits while polling, nothing is published here and errProcessExited is
// returned. Cancelling ctx stops polling silently.
// h may be nil to probe an endpoint without a local process.
func (s *Supervisor) AwaitReadiness(ctx context.Context, h *Handle, endpoint *url.URL) error {
	timeout := s.opts.Readiness.Timeout
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if h != nil {
		go func() {
			select {
			case <-h.Done():
				cancel()
			case <-pollCtx.Done():
			}
		}()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.Readiness.InitialInterval
	b.MaxInterval = s.opts.Readiness.MaxInterval

	started := time.Now()
	attempts := 0
	var lastErr error
	op := func() (struct{}, error) {
		attempts++
		if h != nil && !h.Running() {
			return struct{}{}, backoff.Permanent(errProcessExited)
		}
		err := s.probe(pollCtx, endpoint)
		if err != nil {
			lastErr = err
		}
		return struct{}{}, err
	}
	notify := func(err error, next time.Duration) {
		logging.Debug("Supervisor", "Endpoint %s not ready (%v), retrying in %s", endpointString(endpoint), err, next)
	}

	_, err := backoff.Retry(pollCtx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(timeout),
		backoff.WithNotify(notify),
	)

	switch {
	case h != nil && !h.Running():
		return errProcessExited
	case err == nil:
		if h != nil && !h.markReady() {
			return errProcessExited
		}
		logging.Info("Supervisor", "Server ready at %s after %d probes in %s", endpointString(endpoint), attempts, time.Since(started).Round(time.Millisecond))
		s.pub.Publish(events.Ready{Endpoint: endpoint})
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		if h != nil && !h.markFailed() {
			return errProcessExited
		}
		terr := &TimeoutError{Endpoint: endpointString(endpoint), Timeout: timeout, Err: lastErr}
		logging.Error("Supervisor", terr, "Server did not become ready")
		s.pub.Publish(events.Failure{Kind: events.TimeoutErrorKind, Err: terr})
		return terr
	}
}

// probe issues one GET against endpoint.
func (s *Supervisor) probe(ctx context.Context, endpoint *url.URL) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
