package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last change to the
// settings file before reloading it.
const DefaultDebounceInterval = 250 * time.Millisecond

// WatchSettings calls onChange every time the settings file at path is
// written or replaced, until ctx is done. The parent directory is watched so
// that editors which save by rename are picked up.
func WatchSettings(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Info("SettingsWatcher", "Watching %s for changes", path)

	var (
		mu       sync.Mutex
		debounce *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.AfterFunc(DefaultDebounceInterval, func() {
			if ctx.Err() == nil {
				onChange()
			}
		})
	}

	base := filepath.Base(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if debounce != nil {
					debounce.Stop()
				}
				mu.Unlock()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logging.Debug("SettingsWatcher", "Settings file changed: %s", event.Name)
				trigger()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Error("SettingsWatcher", err, "fsnotify error")
			}
		}
	}()
	return nil
}
