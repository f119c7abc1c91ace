package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/tracesink/pkg/log"
)

// settleDelay gives editors time to finish writing before the file is read.
var settleDelay = 100 * time.Millisecond

// Watch reloads configPath whenever it changes and hands the new config to
// onChange. Editors that save through an atomic rename are handled by
// re-adding the watch. Watch blocks until ctx is done.
func Watch(ctx context.Context, configPath string, onChange func(*Config)) error {
	l := log.ForService("config")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			l.Warnf("failed to close config file watcher: %v", err)
		}
	}()

	if err := watcher.Add(configPath); err != nil {
		return fmt.Errorf("watching config file %s: %w", configPath, err)
	}
	l.Infof("watching config file for changes: %s", configPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// React to write, create, rename, and remove events (editors often use atomic writes)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			l.Debugf("config file changed: %s (event: %s)", event.Name, event.Op.String())

			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(2 * settleDelay)

				// Check if file was actually replaced (atomic write) or just removed
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					l.Warnf("config file was removed and not replaced, skipping reload")
					continue
				}

				// Re-add the config file to watcher in case it was replaced
				if err := watcher.Add(configPath); err != nil {
					l.Warnf("failed to re-add config file to watcher after rename/remove: %v", err)
				}
			} else {
				time.Sleep(settleDelay)
			}

			cfg, err := LoadConfig(configPath)
			if err != nil {
				l.Errorf("failed to reload configuration: %v", err)
				continue
			}
			onChange(cfg)
			l.Infof("configuration reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Errorf("config file watcher error: %v", err)
		}
	}
}
