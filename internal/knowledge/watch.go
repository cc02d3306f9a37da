package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called after the cache entries derived from a data file
// were invalidated. name is relative to the data directory, slash separated.
type ChangeFunc func(name string)

// Watch invalidates cached entries whenever a file in the data directory or
// below guides/ changes on disk. It blocks until ctx is canceled or the
// watcher fails. onChange may be nil.
func (b *Base) Watch(ctx context.Context, onChange ChangeFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(b.dataDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", b.dataDir, err)
	}
	if err := b.watchTree(watcher, b.guidesDir()); err != nil {
		return err
	}
	b.logger.Info("Watching data directory", "path", b.dataDir)

	for {
		select {
		case <-ctx.Done():
			b.logger.Debug("Data watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			b.handleEvent(watcher, event, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("Data watcher error", "error", err)
		}
	}
}

func (b *Base) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event, onChange ChangeFunc) {
	if event.Op == fsnotify.Chmod {
		return
	}

	rel, err := filepath.Rel(b.dataDir, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := b.watchTree(watcher, event.Name); err != nil {
				b.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
		}
	}

	name := rel
	if rel == GuidesDir || strings.HasPrefix(rel, GuidesDir+"/") {
		// any change below guides/ affects the guide index
		name = GuidesDir
	}

	removed := b.Invalidate(name)
	b.logger.Debug("Data file changed", "file", rel, "op", event.Op.String(), "invalidated", removed)

	if onChange != nil {
		onChange(rel)
	}
}

// watchTree adds dir and its subdirectories to the watcher. A missing dir
// is ignored.
func (b *Base) watchTree(watcher *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}
