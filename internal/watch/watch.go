package watch

import (
	"fmt"
	"github.com/fsnotify/fsnotify"
	"github.com/robinovitch61/bw/internal/dev"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ignoredDirs are never watched, nor is any directory whose name starts with a dot
var ignoredDirs = map[string]bool{
	".git":         true,
	"target":       true,
	"node_modules": true,
	"vendor":       true,
}

// Change is a set of paths modified within one debounce window
type Change struct {
	Paths []string
}

// Watcher reports file changes under a set of directories, recursively
type Watcher struct {
	Changes chan Change
	Errors  chan error

	watcher  *fsnotify.Watcher
	roots    []string
	debounce time.Duration
	ignored  map[string]bool
	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New starts watching dirs. Changes are delivered on Changes once no new event came for the debounce duration
func New(dirs []string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}
	w := &Watcher{
		Changes:  make(chan Change, 1),
		Errors:   make(chan error, 1),
		watcher:  fw,
		debounce: debounce,
		ignored:  make(map[string]bool),
		stopCh:   make(chan struct{}),
	}
	for _, dir := range dirs {
		root, err := filepath.Abs(dir)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("error watching %s: %w", dir, err)
		}
		if err := w.addRecursive(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
		w.roots = append(w.roots, root)
	}
	go w.loop()
	return w, nil
}

// Ignore stops reporting changes to path, e.g. for files written by bw itself
func (w *Watcher) Ignore(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignored[abs] = true
}

// Done is closed once the watcher is closed
func (w *Watcher) Done() <-chan struct{} {
	return w.stopCh
}

func (w *Watcher) Close() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

func isIgnoredDir(name string) bool {
	return ignoredDirs[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

// isIgnoredFile is true for files editors write next to the ones being edited
func isIgnoredFile(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".swx") ||
		name == "4913"
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("error watching %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("error watching %s: not a directory", root)
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// skip what can't be read, keep walking
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && isIgnoredDir(info.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			dev.Debug(fmt.Sprintf("not watching %s: %v", path, err))
		}
		return nil
	})
}

// relevant is true for events that can change the result of a job
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel := w.relativeToRoot(event.Name)
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if isIgnoredDir(part) {
			return false
		}
	}
	base := filepath.Base(rel)
	return !ignoredDirs[base] && !isIgnoredFile(base)
}

// relativeToRoot is path relative to the watched directory containing it, so that the location of the watched
// directories themselves doesn't matter
func (w *Watcher) relativeToRoot(path string) string {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel
		}
	}
	return filepath.Base(path)
}

func (w *Watcher) loop() {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C
	pending := make(map[string]bool)

	for {
		select {
		case <-w.stopCh:
			debounceTimer.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				// new directories are watched too
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isIgnoredDir(info.Name()) {
					_ = w.addRecursive(event.Name)
				}
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = true
			debounceTimer.Reset(w.debounce)
		case <-debounceTimer.C:
			change := w.flush(pending)
			pending = make(map[string]bool)
			if len(change.Paths) == 0 {
				continue
			}
			dev.Debug(fmt.Sprintf("files changed: %v", change.Paths))
			select {
			case w.Changes <- change:
			case <-w.stopCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				dev.Debug(fmt.Sprintf("dropped watcher error: %v", err))
			}
		}
	}
}

// flush turns the pending paths into a Change, leaving out ignored files
func (w *Watcher) flush(pending map[string]bool) Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	var paths []string
	for path := range pending {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if w.ignored[abs] {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return Change{Paths: paths}
}
