// Package watch re-runs a callback for source files that change below a
// project root. Events are debounced so that editors writing a file in
// several steps trigger a single run.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a flush
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher
type Options struct {
	Debounce time.Duration
	// Match reports whether a root-relative, slash-separated file path is of interest
	Match func(rel string) bool
	// SkipDir reports whether a root-relative directory is left unwatched
	SkipDir func(rel string) bool
	// OnChange receives the sorted root-relative paths that changed and still exist
	OnChange func(ctx context.Context, files []string)
	Logger   *slog.Logger
}

// Watcher reports changed files below a project root in debounced batches
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	opts      Options
	log       *slog.Logger
	ready     chan struct{}
	pending   map[string]struct{}
}

// New creates a watcher for root. Nothing is watched until Run.
func New(root string, opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		return nil, os.ErrInvalid
	}
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}
	if opts.SkipDir == nil {
		opts.SkipDir = func(string) bool { return false }
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      root,
		opts:      opts,
		log:       log,
		ready:     make(chan struct{}),
		pending:   make(map[string]struct{}),
	}, nil
}

// Close releases the underlying watcher of a Watcher that is never Run
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// Ready is closed once the initial directory tree is being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Callbacks run on the calling
// goroutine, one batch at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()

	if err := w.watchRecursive(w.root); err != nil {
		return err
	}
	close(w.ready)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)

		case <-fire:
			fire = nil
			w.flush(ctx)
		}
	}
}

// handle records an event and reports whether a flush should be scheduled
func (w *Watcher) handle(event fsnotify.Event) bool {
	rel, err := w.rel(event.Name)
	if err != nil {
		return false
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if w.opts.SkipDir(rel) {
				return false
			}
			if err := w.watchRecursive(event.Name); err != nil {
				w.log.Warn("failed to watch new directory", "path", event.Name, "error", err)
				return false
			}
			return w.enqueueExisting(event.Name)
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !w.opts.Match(rel) {
		return false
	}

	w.pending[rel] = struct{}{}
	return true
}

// enqueueExisting schedules files already present in a new directory,
// e.g. a directory moved into the tree
func (w *Watcher) enqueueExisting(dir string) bool {
	queued := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, err := w.rel(path); err == nil && w.opts.Match(rel) {
			w.pending[rel] = struct{}{}
			queued = true
		}
		return nil
	})
	return queued
}

func (w *Watcher) flush(ctx context.Context) {
	files := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		if _, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(rel))); errors.Is(err, fs.ErrNotExist) {
			w.log.Debug("changed file is gone", "file", rel)
			continue
		}
		files = append(files, rel)
	}
	w.pending = make(map[string]struct{})

	if len(files) == 0 {
		return
	}
	sort.Strings(files)
	w.log.Debug("files changed", "count", len(files))
	w.opts.OnChange(ctx, files)
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := w.rel(path); err == nil && rel != "." && w.opts.SkipDir(rel) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) rel(path string) (string, error) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
