package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/codefionn/gencalc/internal/consts"
	"github.com/codefionn/gencalc/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it changes and passes the
// fresh Config to onChange. Bursts of events are coalesced. Reload errors are
// logged and the previous configuration stays in effect. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	return watch(ctx, path, consts.ConfigReloadDebounce, onChange)
}

func watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory instead.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	log := logger.Global().WithPrefix("config")
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			cfg, err := Load(absPath)
			if err != nil {
				log.Warn("reload failed, keeping previous config: %v", err)
				continue
			}
			log.Info("reloaded %s", absPath)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("config watcher error: %v", err)
		}
	}
}
