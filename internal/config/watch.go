package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file into holder whenever it changes on disk,
// until the context is canceled. Reloads that fail to parse or validate
// are logged and the previous config stays in effect.
//
// The parent directory is watched rather than the file itself because
// editors typically replace the file (write temp, rename), which drops a
// watch on the file's inode.
func Watch(ctx context.Context, path string, holder *Holder, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	logger.Debug("watching config file", slog.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config reload failed, keeping previous config",
					slog.String("error", err.Error()),
				)

				continue
			}

			holder.Set(cfg)
			logger.Info("config reloaded", slog.String("path", path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("config watcher error", slog.String("error", err.Error()))
		}
	}
}
