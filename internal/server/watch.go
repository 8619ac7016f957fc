package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// WatchSnapshot reloads the graph whenever the snapshot file at path is
// written or replaced. The parent directory is watched because snapshots are
// replaced by rename. It blocks until ctx is done.
func (s *Server) WatchSnapshot(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir, base := filepath.Dir(path), filepath.Base(path)
	if err := w.Add(dir); err != nil {
		return err
	}
	s.logger.Debug("watching snapshot", slog.String("path", path))

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			// Failures are logged by Reload; the old graph stays live.
			_, _ = s.Reload(ctx, "watch")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("snapshot watch error", slog.Any("error", err))
		}
	}
}
