package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchFile reloads gw from the JSON file at path whenever the file is
// written or replaced, and calls onReload with the new card count. It
// blocks until ctx is done. A file that fails to decode leaves gw as it was.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename are still seen.
func WatchFile(ctx context.Context, path string, gw *MemoryGateway, onReload func(cards int), logger *zap.Logger) (err error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}

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

			cards, err := readFile(target)
			if err != nil {
				logger.Warn("catalog reload failed", zap.String("file", target), zap.Error(err))
				continue
			}
			gw.Replace(cards...)
			logger.Info("card catalog reloaded", zap.String("file", target), zap.Int("cards", len(cards)))
			if onReload != nil {
				onReload(len(cards))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
