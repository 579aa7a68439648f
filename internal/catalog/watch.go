package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the catalog file whenever it changes and stores the result in
// live, calling onReload after each successful swap. It blocks until ctx is done.
// Invalid files are logged and the previous catalog stays in place.
func Watch(ctx context.Context, path string, live *Live, logger *slog.Logger, onReload func(*Catalog)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the parent directory: editors often replace the file on save.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	reload := func() {
		c, err := LoadFile(abs, Default())
		if err != nil {
			logger.Error("catalog reload failed", "path", abs, "error", err)
			return
		}
		_ = live.Set(c)
		logger.Info("catalog reloaded", "path", abs, "panels", len(c.Panels()))
		if onReload != nil {
			onReload(c)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher error", "error", err)
		}
	}
}
