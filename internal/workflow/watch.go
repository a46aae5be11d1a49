package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"spool/internal/logging"
	"spool/internal/services"
)

// Watch processes dir once, then keeps rescanning it whenever script
// changes settle, until ctx ends. Only the root directory is watched;
// scripts dropped into subdirectories are picked up by the rescan a
// root-level event triggers.
func (r *Runner) Watch(ctx context.Context, dir string, opts Options) error {
	info, err := os.Stat(dir)
	if err != nil {
		return services.Wrap(services.ErrValidation, "watch", "", "stat watch path", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrValidation, "watch", "", "watch path must be a directory", nil)
	}

	debounce := time.Duration(r.cfg.Workflow.WatchDebounceSeconds) * time.Second
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	r.runOnce(ctx, dir, opts)
	if ctx.Err() != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "watch", "", "create filesystem watcher", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return services.Wrap(services.ErrConfiguration, "watch", "", "watch directory", err)
	}

	r.logger.Info("watching for scripts", logging.String("path", dir), logging.Duration("debounce", debounce))

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".vpy" {
				continue
			}
			r.logger.Debug("script change detected", logging.String("path", event.Name))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			r.runOnce(ctx, dir, opts)
			if ctx.Err() != nil {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("filesystem watcher error", logging.Error(err))
		}
	}
}

// runOnce runs a batch and logs failures instead of propagating them, so a
// bad batch does not end watch mode.
func (r *Runner) runOnce(ctx context.Context, dir string, opts Options) {
	if _, err := r.Run(ctx, dir, opts); err != nil && !errors.Is(err, services.ErrInterrupted) {
		r.logger.Error("watch run failed", logging.Error(err))
	}
}
