package config

import (
	"context"
	"path/filepath"
	"time"

	"charm.land/log/v2"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk, so renderer
// tunables can be adjusted while nvgrid is running.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config)
	logger   *log.Logger
	debounce time.Duration
}

// NewWatcher watches path and calls onReload with the freshly parsed config
// after every change. The containing directory is watched rather than the
// file: editors replace files atomically (write temp, rename), which drops a
// watch on the file's inode.
func NewWatcher(path string, onReload func(*Config), logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		path:     path,
		onReload: onReload,
		logger:   logger.With("component", "config"),
		debounce: 200 * time.Millisecond,
	}, nil
}

// Run processes file events until the context is canceled or the watcher
// closes.
func (w *Watcher) Run(ctx context.Context) error {
	var lastReload time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if time.Since(lastReload) < w.debounce {
				continue
			}
			lastReload = time.Now()

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("config reload failed", "err", err)
				continue
			}
			w.logger.Info("config reloaded", "path", w.path)
			w.onReload(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
