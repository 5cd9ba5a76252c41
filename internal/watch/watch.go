// Package watch re-runs a migration whenever its inputs change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docmigrate/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a run starts.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one migration.
type RunFunc func(ctx context.Context) error

// Options selects what is watched.
type Options struct {
	// Dirs are watched recursively; directories created later are added.
	Dirs []string
	// Files are watched through their parent directory.
	Files []string
	// Ignore holds paths whose events never trigger a run, typically the outputs.
	Ignore   []string
	Debounce time.Duration
}

// Watcher runs a RunFunc once, then again after every batch of relevant changes.
// Runs never overlap; changes during a run schedule exactly one more run.
type Watcher struct {
	run      RunFunc
	dirs     []string
	files    map[string]bool
	ignore   []string
	debounce time.Duration
}

// New creates a Watcher. Paths are made absolute.
func New(run RunFunc, opts Options) (*Watcher, error) {
	w := &Watcher{run: run, files: map[string]bool{}, debounce: opts.Debounce}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	for _, d := range opts.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		w.dirs = append(w.dirs, abs)
	}
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		w.files[abs] = true
	}
	for _, p := range opts.Ignore {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		w.ignore = append(w.ignore, abs)
	}
	return w, nil
}

// Run blocks until ctx is done. Errors from individual runs are logged and do not
// stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := w.setupFileWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = fw.Close()
	}()

	requests, trigger := w.setupDebouncer()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx, requests)
	}()

	requests <- struct{}{}
	err = w.loop(ctx, fw, trigger)
	wg.Wait()
	return err
}

func (w *Watcher) setupFileWatcher() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, d := range w.dirs {
		if err := w.addDirsRecursive(fw, d); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	for f := range w.files {
		if err := fw.Add(filepath.Dir(f)); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", f, err)
		}
	}
	return fw, nil
}

// setupDebouncer returns the run request channel and a trigger that sends on it
// once events have been quiet for the debounce period.
func (w *Watcher) setupDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	requests := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}
	return requests, trigger
}

// worker serializes runs. A request arriving while a run is in progress stays
// buffered in the channel and starts the next run.
func (w *Watcher) worker(ctx context.Context, requests <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			started := time.Now()
			if err := w.run(ctx); err != nil {
				slog.Warn("Migration run failed", logfields.Error(err))
				continue
			}
			slog.Info("Migration run finished", logfields.DurationMS(float64(time.Since(started).Milliseconds())))
		}
	}
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if !w.relevant(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fw, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// relevant reports whether a change to name should cause a run.
func (w *Watcher) relevant(name string) bool {
	if shouldIgnoreEvent(name) {
		return false
	}
	for _, ig := range w.ignore {
		if within(name, ig) {
			return false
		}
	}
	if w.files[name] {
		return true
	}
	for _, d := range w.dirs {
		if within(name, d) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		for _, ig := range w.ignore {
			if within(path, ig) {
				return filepath.SkipDir
			}
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func within(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// shouldIgnoreEvent returns true for editor and OS scratch files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
