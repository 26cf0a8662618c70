// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 150 * time.Millisecond

type Options struct {
	// Debounce is how long the tree must be quiet before a change batch fires.
	Debounce time.Duration
	// Paths restricts notifications to these root-relative paths. Empty
	// reports every path.
	Paths []string
}

// Watcher reports batches of changed files under a working tree root.
type Watcher struct {
	root       string
	watcher    *fsnotify.Watcher
	ignoreDirs map[string]bool
	paths      map[string]bool
	debounce   time.Duration
	logger     *zap.Logger
}

func New(root string, opts Options, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:    root,
		watcher: watcher,
		ignoreDirs: map[string]bool{
			".git":         true,
			"node_modules": true,
			"vendor":       true,
		},
		debounce: opts.Debounce,
		logger:   logger,
	}
	if len(opts.Paths) > 0 {
		w.paths = make(map[string]bool, len(opts.Paths))
		for _, p := range opts.Paths {
			w.paths[filepath.ToSlash(filepath.Clean(p))] = true
		}
	}

	if err := w.addTree(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}
	return w, nil
}

// addTree registers dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoreDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

// Run delivers debounced, sorted batches of changed root-relative paths to
// onChange until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	pending := map[string]bool{}
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if rel, ok := w.handleFSEvent(event); ok {
				pending[rel] = true
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = map[string]bool{}

			w.logger.Debug("files changed", zap.Strings("paths", batch))
			onChange(batch)
		}
	}
}

// handleFSEvent returns the root-relative path the event concerns, or false
// when it should be ignored.
func (w *Watcher) handleFSEvent(event fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		w.logger.Error("getting relative path", zap.Error(err))
		return "", false
	}
	if w.ShouldIgnore(rel) {
		return "", false
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("adding new directory to watcher", zap.Error(err))
			}
			return "", false
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}

	rel = filepath.ToSlash(rel)
	if w.paths != nil && !w.paths[rel] {
		return "", false
	}
	return rel, true
}

func (w *Watcher) ShouldIgnore(path string) bool {
	if path == "" || path == "." {
		return true
	}

	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if w.ignoreDirs[part] {
			return true
		}
	}
	return false
}

// Close cleans up resources
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
