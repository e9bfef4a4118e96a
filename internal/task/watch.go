package task

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is the delay after a filesystem event before reloading,
// so that a burst of writes triggers one reload.
const reloadDebounce = 200 * time.Millisecond

// Watch reloads the store whenever task documents under dir change on
// disk out-of-band (manual edits, a second instance, restores from
// backup). It blocks until ctx is cancelled. The store's own async writes
// also trigger a reload, which is redundant but harmless.
func (s *Store) Watch(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	s.logger.Info("task store watcher started", "dir", dir)

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("task store watcher stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if strings.HasSuffix(filepath.Base(event.Name), ".tmp") {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("task store watcher error", "error", err)
		case <-reload:
			if err := s.Load(ctx); err != nil {
				s.logger.Error("failed to reload tasks", "error", err)
				continue
			}
			s.logger.Debug("task store reloaded from disk")
		}
	}
}
