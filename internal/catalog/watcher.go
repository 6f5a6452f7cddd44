package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called after the database file changed on disk.
type ChangeCallback func()

const watchDebounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the directory holding the database at
// path and calls cb, debounced, whenever the database file or its WAL/journal
// companions are written, created or removed. It runs until ctx is cancelled.
//
// Writes made through this process are reported as well; callers that only
// care about foreign writers must tolerate the extra signal.
func Watch(ctx context.Context, path string, logger *slog.Logger, cb ChangeCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		return err
	}

	base := filepath.Base(abs)
	watched := map[string]struct{}{
		base:              {},
		base + "-wal":     {},
		base + "-journal": {},
	}

	logger.Info("watcher: started", slog.String("db", abs))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			debounceCh = nil
			logger.Debug("watcher: store changed", slog.String("db", abs))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, hit := watched[filepath.Base(ev.Name)]; !hit {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			debounceCh = debounce.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
