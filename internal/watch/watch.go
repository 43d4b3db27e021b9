// Package watch reports changes to a single file made by other programs.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/samanthvittal/bookmark-browser/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 200 * time.Millisecond

// FileWatcher calls onChange after path is written, created or renamed into
// place. The parent directory is watched so atomic replaces are seen.
type FileWatcher struct {
	dir      string
	name     string
	onChange func()
	debounce time.Duration
	logger   logger.Logger
}

// New creates a watcher for path. It does nothing until Run is called.
func New(path string, onChange func(), debounce time.Duration, log logger.Logger) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		dir:      filepath.Dir(path),
		name:     filepath.Base(path),
		onChange: onChange,
		debounce: debounce,
		logger:   log,
	}
}

// Run watches until ctx is canceled.
func (w *FileWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", w.dir, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching file",
		logger.String("dir", w.dir),
		logger.String("file", w.name))

	timer := time.NewTimer(w.debounce)
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
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("watched file event",
				logger.String("file", w.name),
				logger.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			w.onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", logger.Error(err))
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.name {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
