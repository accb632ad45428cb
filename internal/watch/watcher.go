package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"testwright/pkg/logging"
)

const subsystem = "Watch"

// Operation is the kind of change applied to a file.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// FileChange is the net change of one file within a debounce window.
type FileChange struct {
	Path      string
	Operation Operation
}

// Change is one debounced batch of file changes.
type Change struct {
	Files []FileChange
	Time  time.Time
}

// Paths returns the changed file paths.
func (c Change) Paths() []string {
	out := make([]string, len(c.Files))
	for i, f := range c.Files {
		out[i] = f.Path
	}
	return out
}

// Watcher watches suite files and emits debounced changes.
type Watcher struct {
	mu sync.Mutex

	roots    []string
	files    map[string]bool // roots that are files
	debounce time.Duration
	match    func(path string) bool

	watcher *fsnotify.Watcher
	pending map[string]Operation
	timer   *time.Timer
	stopCh  chan struct{}
	done    chan struct{}
	running bool
}

// New creates a watcher over roots. Files in watched directories are
// reported when match returns true; a nil match accepts *.yaml and *.yml.
func New(roots []string, debounce time.Duration, match func(string) bool) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if match == nil {
		match = isYAMLFile
	}
	return &Watcher{
		roots:    roots,
		files:    make(map[string]bool),
		debounce: debounce,
		match:    match,
		pending:  make(map[string]Operation),
	}
}

// Start begins watching and sends changes on the given channel. Sends never
// block; a change is dropped when the channel is full.
func (w *Watcher) Start(ctx context.Context, changes chan<- Change) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fw
	w.running = true
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	if err := w.setupWatches(); err != nil {
		w.mu.Lock()
		w.running = false
		w.watcher = nil
		w.mu.Unlock()
		_ = fw.Close()
		return err
	}

	go w.processEvents(ctx, changes)
	logging.Info(subsystem, "Watching %s for suite changes", strings.Join(w.roots, ", "))
	return nil
}

// Run watches until ctx is cancelled, calling onChange for every change.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, Change)) error {
	changes := make(chan Change, 1)
	if err := w.Start(ctx, changes); err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-changes:
			onChange(ctx, c)
		}
	}
}

func (w *Watcher) setupWatches() error {
	for _, root := range w.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			w.mu.Lock()
			w.files[abs] = true
			w.mu.Unlock()
			// Editors often replace files, so the parent directory is watched.
			if err := w.add(filepath.Dir(abs)); err != nil {
				return err
			}
			continue
		}
		if err := w.addTree(abs); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.add(p)
	})
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	fw := w.watcher
	w.mu.Unlock()
	if fw == nil {
		return errors.New("watcher is not running")
	}
	if err := fw.Add(dir); err != nil {
		return err
	}
	logging.Debug(subsystem, "Watching directory: %s", dir)
	return nil
}

func (w *Watcher) processEvents(ctx context.Context, changes chan<- Change) {
	w.mu.Lock()
	fw, stopCh, done := w.watcher, w.stopCh, w.done
	w.mu.Unlock()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return
		case <-stopCh:
			w.cancelPending()
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event, changes)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logging.Error(subsystem, err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, changes chan<- Change) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if strings.HasPrefix(filepath.Base(event.Name), ".") || !w.inTree(event.Name) {
				return
			}
			if err := w.addTree(event.Name); err != nil {
				logging.Warn(subsystem, "Failed to watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}
	if !w.relevant(event.Name) {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		op = OperationCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		op = OperationUpdate
	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		op = OperationDelete
	default:
		return
	}
	w.record(event.Name, op, changes)
}

// relevant reports whether path is a watched file root or a matching file in
// a watched directory tree.
func (w *Watcher) relevant(path string) bool {
	w.mu.Lock()
	isRoot := w.files[path]
	w.mu.Unlock()
	if isRoot {
		return true
	}
	return w.match(path) && w.inTree(path)
}

func (w *Watcher) inTree(path string) bool {
	for _, root := range w.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		w.mu.Lock()
		isFile := w.files[abs]
		w.mu.Unlock()
		if isFile {
			continue
		}
		if rel, err := filepath.Rel(abs, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// record merges op into the pending batch and restarts the debounce timer.
func (w *Watcher) record(path string, op Operation, changes chan<- Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	if prev, ok := w.pending[path]; ok {
		op = mergeOperations(prev, op)
	}
	w.pending[path] = op

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(changes) })
}

func (w *Watcher) flush(changes chan<- Change) {
	w.mu.Lock()
	if len(w.pending) == 0 || !w.running {
		w.mu.Unlock()
		return
	}
	c := Change{Time: time.Now()}
	for p, op := range w.pending {
		c.Files = append(c.Files, FileChange{Path: p, Operation: op})
	}
	w.pending = make(map[string]Operation)
	w.timer = nil
	w.mu.Unlock()

	sort.Slice(c.Files, func(i, j int) bool { return c.Files[i].Path < c.Files[j].Path })
	select {
	case changes <- c:
		logging.Debug(subsystem, "Emitted change of %d files", len(c.Files))
	default:
		logging.Warn(subsystem, "Change channel full, dropping change of %d files", len(c.Files))
	}
}

// mergeOperations merges two operations into a single logical operation.
func mergeOperations(old, next Operation) Operation {
	if old == OperationCreate {
		if next == OperationDelete {
			return OperationDelete
		}
		return OperationCreate
	}
	if old == OperationDelete && next == OperationCreate {
		// Replaced by an atomic save.
		return OperationUpdate
	}
	return next
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = make(map[string]Operation)
}

// Stop stops the watcher and waits for its event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	fw, done := w.watcher, w.done
	w.mu.Unlock()

	var err error
	if fw != nil {
		err = fw.Close()
	}
	<-done

	w.mu.Lock()
	w.watcher = nil
	w.mu.Unlock()
	logging.Info(subsystem, "Stopped watching")
	return err
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
