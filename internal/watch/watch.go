// Package watch re-runs work when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of events a single editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// FileWatcher calls back when one file is written or recreated.
type FileWatcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *FileWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for path.
func New(path string, opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	w := &FileWatcher{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange after each settled change.
// The parent directory is watched so editors that save by rename still trigger.
func (w *FileWatcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Debug("watching", zap.String("path", w.path))

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
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			onChange()
		}
	}
}
