package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/dgnsrekt/readalong/utils"
)

// ChangeFunc receives a fresh session, or the error that prevented one,
// each time the watched file changes.
type ChangeFunc func(*Session, error)

// Watch calls onChange with a new session whenever the file at path is
// written or recreated, until ctx is done. The directory is watched rather
// than the file so editors that replace files on save are noticed.
func Watch(ctx context.Context, path string, onChange ChangeFunc, opts ...Option) error {
	path, err := filepath.Abs(utils.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("unable to get absolute path: %w", err)
	}

	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	logger.Info("fsnotify watching dir", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("fsnotify dir unwatched", "dir", dir)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			logger.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			onChange(Open(path, opts...))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}
