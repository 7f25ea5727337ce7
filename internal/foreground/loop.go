// Package foreground provides the single goroutine that owns presentation
// state. Background work (process monitoring, token exchange) hands results
// back by posting closures onto a Loop instead of touching that state
// directly.
package foreground

import (
	"context"
	"errors"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// ErrStopped is returned by Post after the loop has stopped.
var ErrStopped = errors.New("foreground loop stopped")

// Dispatcher runs functions on the context that owns the caller.
type Dispatcher interface {
	Post(fn func()) error
}

// Loop is a Dispatcher backed by a goroutine draining a task queue in order.
type Loop struct {
	tasks    chan func()
	stopping chan struct{}
	done     chan struct{}
}

// NewLoop returns a loop that accepts up to size pending tasks before Post
// blocks.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		tasks:    make(chan func(), size),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Post enqueues fn. It blocks while the queue is full.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.stopping:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.stopping:
		return ErrStopped
	}
}

// Run executes tasks until ctx is done, then drains what is already queued
// and returns. Run must be called once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			l.exec(fn)
		case <-ctx.Done():
			close(l.stopping)
			for {
				select {
				case fn := <-l.tasks:
					l.exec(fn)
				default:
					return nil
				}
			}
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Foreground", nil, "Recovered from panic in task: %v", r)
		}
	}()
	fn()
}

// Immediate runs functions synchronously on the calling goroutine. It is
// used by commands that have no presentation state to protect.
type Immediate struct{}

// Post implements Dispatcher.
func (Immediate) Post(fn func()) error {
	fn()
	return nil
}
