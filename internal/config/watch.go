package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"talktonic/internal/dialogue"
)

const reloadDebounce = 200 * time.Millisecond

// WatchTriggers reloads path whenever it changes and passes the new trigger
// lists to apply. Invalid files are logged and skipped. It returns once the
// watcher is running; cancel ctx to stop it.
func WatchTriggers(ctx context.Context, path string, apply func(dialogue.Triggers)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(reloadDebounce)
				} else {
					timer.Reset(reloadDebounce)
				}
				fire = timer.C
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Config] watcher error: %v", err)
			case <-fire:
				fire = nil
				c, err := Load(path)
				if err != nil {
					log.Printf("[Config] reload of %s skipped: %v", path, err)
					continue
				}
				log.Printf("[Config] reloaded triggers (%d keywords, %d uncertainty tokens)",
					len(c.Triggers.Keywords), len(c.Triggers.Uncertainty))
				apply(c.Triggers)
			}
		}
	}()
	return nil
}
