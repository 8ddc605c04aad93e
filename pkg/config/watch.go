package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bastiangx/rankserve/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// reloadSettle coalesces the burst of events editors emit for one save.
const reloadSettle = 100 * time.Millisecond

// Watch reloads the config at path whenever it changes and passes each
// successfully loaded config to onChange. It watches the parent directory
// so atomic rename-on-save is picked up. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	l := logger.New("config")
	l.Debug("Watching config", "path", path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadSettle)
			} else {
				timer.Reset(reloadSettle)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			cfg, err := LoadConfig(path)
			if err != nil {
				l.Warn("Config reload failed", "err", err)
				continue
			}
			l.Info("Config reloaded", "path", path)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Warn("Config watcher error", "err", err)
		}
	}
}
