// Package watch monitors Go source trees and triggers callbacks on change.
// Changes are debounced so a burst of writes produces one callback.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceWindow is how long the watcher waits for the file system to
// settle before reporting a batch of changes.
const debounceWindow = 250 * time.Millisecond

// Watcher monitors directories for Go source changes.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	roots     []string
	ignored   []string
	onChange  func([]string) error
	log       *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// New creates a watcher over the given root directories. Files whose base
// name matches an ignored glob are skipped. A nil logger disables logging.
func New(roots, ignored []string, log *zap.Logger, onChange func([]string) error) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no directories to watch")
	}
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:   watcher,
		debouncer: NewDebouncer(debounceWindow),
		roots:     roots,
		ignored:   ignored,
		onChange:  onChange,
		log:       log,
		stopChan:  make(chan struct{}),
	}

	w.debouncer.SetCallback(func(files []string) {
		if err := w.onChange(files); err != nil {
			w.log.Error("change handler failed", zap.Error(err))
		}
	})

	return w, nil
}

// Start registers all directories under the roots and begins watching.
func (w *Watcher) Start() error {
	for _, root := range w.roots {
		dirs, err := w.findDirectories(root)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root, err)
		}
		for _, dir := range dirs {
			if err := w.watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
			w.log.Debug("watching directory", zap.String("dir", dir))
		}
	}

	w.wg.Add(1)
	go w.watch()

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopChan:
		return nil
	default:
		close(w.stopChan)
	}

	w.wg.Wait()
	w.debouncer.Stop()
	return w.watcher.Close()
}

// watch is the main event loop
func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if w.shouldIgnore(event.Name) {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				// fsnotify watches are not recursive, so directories created
				// while running must be added by hand.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !skipDir(filepath.Base(event.Name)) {
						if err := w.watcher.Add(event.Name); err != nil {
							w.log.Warn("failed to watch new directory",
								zap.String("dir", event.Name), zap.Error(err))
						}
					}
					continue
				}
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if isGoSource(event.Name) {
					w.log.Debug("file changed", zap.String("file", event.Name))
					w.debouncer.Add(event.Name)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

// findDirectories walks root and collects every directory worth watching.
func (w *Watcher) findDirectories(root string) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dirs, nil
}

// skipDir reports whether a directory is outside the build, matching what
// the go tool itself ignores.
func skipDir(name string) bool {
	if name == "vendor" || name == "testdata" || name == "node_modules" {
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// shouldIgnore checks if a file path should be ignored
func (w *Watcher) shouldIgnore(path string) bool {
	baseName := filepath.Base(path)
	if strings.HasPrefix(baseName, ".") || strings.HasPrefix(baseName, "_") {
		return true
	}

	for _, pattern := range w.ignored {
		if matched, _ := filepath.Match(pattern, baseName); matched {
			return true
		}
	}

	return false
}

// isGoSource reports whether path is a non-test Go source file.
func isGoSource(path string) bool {
	if filepath.Ext(path) != ".go" {
		return false
	}
	return !strings.HasSuffix(path, "_test.go")
}

// Debouncer collects file changes and triggers a callback after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add adds a file to the pending batch and restarts the delay.
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}

	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.duration, func() {
		d.flush()
	})
}

// flush triggers the callback with accumulated files
func (d *Debouncer) flush() {
	d.mutex.Lock()

	if d.stopped || len(d.files) == 0 {
		d.mutex.Unlock()
		return
	}

	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	callback := d.callback

	d.mutex.Unlock()

	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop stops the debouncer and drops any pending batch.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
