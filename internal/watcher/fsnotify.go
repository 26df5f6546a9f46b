package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/nexus/internal/exclude"
)

// ErrStopped is returned when adding paths to a stopped Watcher.
var ErrStopped = errors.New("watcher stopped")

// Watcher watches individual files and directory trees with fsnotify.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	exclude   *exclude.Matcher
	errors    chan error

	mu      sync.Mutex
	files   map[string]bool // watched files, by absolute path
	parents map[string]int  // directories watched only for files inside them
	trees   map[string]int  // watched tree roots and their max depth
	stopped bool
}

// New creates a Watcher. It fails when the platform cannot provide file
// notifications (for example when the inotify instance limit is reached).
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		fs:        fsw,
		debouncer: newDebouncer(opts.DebounceWindow, opts.EventBufferSize),
		exclude:   exclude.New(opts.Exclude...),
		errors:    make(chan error, 8),
		files:     make(map[string]bool),
		parents:   make(map[string]int),
		trees:     make(map[string]int),
	}, nil
}

// AddFile watches a single file. Its parent directory is watched so that
// editors that replace the file by rename are still noticed.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.parents[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.parents[dir]++
	w.files[abs] = true
	return nil
}

// AddDir watches root and its subdirectories down to maxDepth levels
// (0 watches root only). Excluded and hidden directories are skipped.
func (w *Watcher) AddDir(root string, maxDepth int) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if err := w.addTree(abs, abs, maxDepth); err != nil {
		return err
	}
	w.trees[abs] = maxDepth
	return nil
}

// addTree must be called with w.mu held.
func (w *Watcher) addTree(root, start string, maxDepth int) error {
	return filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == start {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || w.exclude.Match(path, true)) {
			return filepath.SkipDir
		}
		if addErr := w.fs.Add(path); addErr != nil {
			if path == start {
				return fmt.Errorf("watch %s: %w", path, addErr)
			}
			slog.Debug("skipping unwatchable directory", slog.String("path", path), slog.String("error", addErr.Error()))
			return filepath.SkipDir
		}
		if depth(root, path) >= maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// Run forwards filtered fsnotify events to the debouncer until ctx is
// cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
				slog.Warn("watcher error dropped", slog.String("error", err.Error()))
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	var op Operation
	switch {
	case ev.Op&fsnotify.Create != 0:
		op = OpCreate
	case ev.Op&fsnotify.Write != 0:
		op = OpModify
	case ev.Op&fsnotify.Remove != 0:
		op = OpDelete
	case ev.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// Chmod alone never changes what is indexed.
		return
	}

	info, statErr := os.Stat(ev.Name)
	isDir := statErr == nil && info.IsDir()

	w.mu.Lock()
	relevant := w.files[ev.Name] || w.underTree(ev.Name)
	if relevant && isDir && op == OpCreate {
		// New subdirectory: extend the watch if it is within depth.
		if root, maxDepth, ok := w.treeOf(ev.Name); ok && depth(root, ev.Name) <= maxDepth {
			_ = w.addTree(root, ev.Name, maxDepth)
		}
	}
	w.mu.Unlock()

	if !relevant {
		return
	}
	w.debouncer.Add(FileEvent{Path: ev.Name, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

// underTree reports whether path lies inside a watched tree. Caller holds w.mu.
func (w *Watcher) underTree(path string) bool {
	_, _, ok := w.treeOf(path)
	return ok
}

func (w *Watcher) treeOf(path string) (string, int, bool) {
	for root, maxDepth := range w.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root, maxDepth, true
		}
	}
	return "", 0, false
}

// Events returns debounced batches. The channel is closed by Stop.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop releases the fsnotify watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	w.debouncer.Stop()
	return w.fs.Close()
}
