package scripts

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/GustavoCosta/typewriter/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// Watch reloads the script at path whenever it is written and passes the
// result to onChange. It blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Script, error)) error {
	if onChange == nil {
		return fmt.Errorf("change handler is required")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve script path %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so renames by editors don't drop the watch.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	logger := logging.Component("scripts")
	logger.Debug().Str("path", target).Msg("watching script")

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
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
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			script, err := LoadScript(target)
			if err != nil {
				logger.Warn().Err(err).Str("path", target).Msg("script reload failed")
			}
			onChange(script, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("script watcher error")
		}
	}
}
