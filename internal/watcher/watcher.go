// Package watcher triggers reindexing when watched source files change.
// Filesystem events are coalesced with a debounce window so a burst of
// writes, such as a save-all or a branch switch, causes one reindex pass
// rather than one per event.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kettleby/autoctx/internal/indexer"
)

// DefaultDebounce is the event coalescing window.
const DefaultDebounce = 400 * time.Millisecond

// Watcher watches a project root recursively and invokes a callback
// after source file changes settle.
type Watcher struct {
	root       string
	extensions map[string]bool
	debounce   time.Duration
	onChange   func()
	logger     *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	started bool
	done    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for event diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for root. onChange runs once per settled burst
// of changes to files matching the extension allowlist (empty = all).
func New(root string, extensions []string, onChange func(), opts ...Option) *Watcher {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	w := &Watcher{
		root:       root,
		extensions: exts,
		debounce:   DefaultDebounce,
		onChange:   onChange,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the watch is established; event
// handling continues until ctx is cancelled or Stop is called. A stopped
// watcher may be started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.done = make(chan struct{})
	w.started = true

	if err := w.addTreeLocked(w.root); err != nil {
		_ = fsw.Close()
		w.watcher = nil
		w.started = false
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Info("watching for changes",
			zap.String("root", w.root),
			zap.Duration("debounce", w.debounce))
	}

	go w.run(ctx, fsw, w.done)
	return nil
}

// run handles events for one Start/Stop cycle. done belongs to that
// cycle; a restart gets a fresh channel and a fresh goroutine.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Warn("watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if w.ignored(path) {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		// A created directory must join the watch before its contents
		// produce events.
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.mu.Lock()
			if w.watcher != nil {
				if err := w.addTreeLocked(path); err != nil && w.logger != nil {
					w.logger.Warn("failed to watch new directory",
						zap.String("path", path), zap.Error(err))
				}
			}
			w.mu.Unlock()
			w.trigger()
			return
		}
		if w.matchExtension(path) {
			w.trigger()
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		// Removed paths cannot be stat'ed to distinguish files from
		// directories; reindexing reconciles either way.
		if w.matchExtension(path) || filepath.Ext(path) == "" {
			w.trigger()
		}
	}
}

// trigger restarts the debounce timer; the callback fires once events
// stop arriving for a full window.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if w.logger != nil {
			w.logger.Debug("changes settled, reindexing", zap.String("root", w.root))
		}
		if w.onChange != nil {
			w.onChange()
		}
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "." && part != ".." && indexer.IgnoredDir(part) {
			return true
		}
	}
	return false
}

func (w *Watcher) matchExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// addTreeLocked adds root and every non-ignored subdirectory to the
// watch. Caller holds w.mu.
func (w *Watcher) addTreeLocked(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && indexer.IgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Stop stops watching and cancels any pending trigger. Safe to call
// multiple times; the watcher can be started again afterwards.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	close(w.done)
}
