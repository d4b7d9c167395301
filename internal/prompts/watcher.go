package prompts

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads overrides whenever path is rewritten, until ctx is
// cancelled. The parent directory is watched because most editors replace
// the file via rename rather than writing in place. Reload errors are
// logged and the previous overrides stay active.
func (l *Library) Watch(ctx context.Context, path string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	logger.Info("prompt watcher: started", slog.String("path", path))

	// Debounce: editors often emit several events per save.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("prompt watcher: stopped")
			return nil

		case <-reloadCh:
			if err := l.LoadOverrides(path); err != nil {
				logger.Warn("prompt watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("prompt watcher: overrides reloaded", slog.String("path", path))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, absErr := filepath.Abs(ev.Name)
			if absErr != nil || abs != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("prompt watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
