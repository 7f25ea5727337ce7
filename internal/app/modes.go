package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/desktop"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// runConsoleMode runs the shell with terminal output, for headless use and
// for checking a server bundle without the web view.
//
// Signal Handling:
//   - SIGINT (Ctrl+C): Triggers graceful shutdown
//   - SIGTERM: Triggers graceful shutdown
//
// Returns the first startup failure, if any.
func runConsoleMode(ctx context.Context, cfg *Config, out io.Writer) error {
	logging.Info("CLI", "Running in console mode. Press Ctrl+C to stop the server and exit.")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := shellOptions(cfg, NewConsolePresenter(out, cfg.Silent))
	opts.ExitOnFailure = true

	err := NewShell(opts).Run(ctx)
	logging.Info("CLI", "--- Server stopped ---")
	return err
}

// runDesktopMode runs the web view on the calling goroutine, which macOS
// requires, and the shell beside it. Closing the window ends the shell, and
// the shell ending closes the window.
func runDesktopMode(ctx context.Context, cfg *Config) error {
	if !desktop.Available() {
		return desktop.ErrUnavailable
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	presenter := desktop.NewPresenter(desktop.Options{Title: "GeoTag"})
	shell := NewShell(shellOptions(cfg, presenter))

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		return shell.Run(ctx)
	})

	windowErr := presenter.Run(ctx, shell)
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	return windowErr
}
