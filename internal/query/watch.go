package query

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch publishes a ChangeExternal on bus whenever the file at path is
// written, created, renamed over or removed. It watches the parent directory
// because the store replaces the file by rename, which detaches a watch on the
// file itself. Watch returns once the watcher is set up; the watch ends when
// ctx is done.
func Watch(ctx context.Context, path string, bus *Bus) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || event.Op&relevant == 0 {
					continue
				}
				slog.DebugContext(ctx, "activities file changed", "op", event.Op.String())
				bus.Publish(Change{Kind: ChangeExternal})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "error watching activities file", "err", err)
			}
		}
	}()
	return nil
}
