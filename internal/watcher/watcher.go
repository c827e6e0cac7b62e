// Package watcher notifies the daemon when the config file changes so
// holiday filters can be reloaded without a restart.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher watches a single config file. It watches the file's
// directory rather than the file itself: editors commonly save through a
// rename/create sequence that would silently detach a direct file watch.
type ConfigWatcher struct {
	path      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	stopCh    chan struct{}
}

// NewConfigWatcher creates a watcher for the given config file path
func NewConfigWatcher(path string, debounceMs int) (*ConfigWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ConfigWatcher{
		path:      filepath.Clean(path),
		watcher:   fsWatcher,
		debouncer: NewDebouncer(debounceMs),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins watching the config file's directory
func (w *ConfigWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	slog.Info("config watcher started", "path", w.path)
	return nil
}

// Events returns the channel of debounced config change events
func (w *ConfigWatcher) Events() <-chan Event {
	return w.debouncer.Events()
}

// Stop stops the watcher
func (w *ConfigWatcher) Stop() error {
	close(w.stopCh)
	w.debouncer.Stop()
	return w.watcher.Close()
}

// processEvents filters directory events down to the watched file
func (w *ConfigWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				w.debouncer.Add(w.path, EventModify)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				w.debouncer.Add(w.path, EventRemove)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "error", err)
		}
	}
}
