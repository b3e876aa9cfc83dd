// Package watch regenerates properties whenever C# sources under the
// project root change.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/easyprops/easyprops/internal/project"
)

// DefaultDebounce is how long the watcher waits for a burst of events to end
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher monitors a source tree and reports batches of changed files
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	fs        afero.Fs
	root      string
	includes  []string
	excludes  []string
	onChange  func([]string) error
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Config configures a FileWatcher
type Config struct {
	Root     string
	Includes []string
	Excludes []string
	Debounce time.Duration
}

// NewFileWatcher creates a watcher. onChange receives the sorted paths of
// every matching file touched during one debounce window.
func NewFileWatcher(fs afero.Fs, cfg Config, onChange func([]string) error, logger *zap.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if len(cfg.Includes) == 0 {
		cfg.Includes = project.DefaultIncludes
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(cfg.Debounce),
		fs:        fs,
		root:      cfg.Root,
		includes:  cfg.Includes,
		excludes:  cfg.Excludes,
		onChange:  onChange,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}

	// Set debouncer callback
	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.logger.Error("failed to handle file changes", zap.Error(err))
		}
	})

	return fw, nil
}

// Start watches every directory under the root and begins the event loop
func (fw *FileWatcher) Start() error {
	dirs, err := fw.findDirectories()
	if err != nil {
		return fmt.Errorf("failed to find directories: %w", err)
	}

	// Add directories to watch
	for _, dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	fw.logger.Debug("watching directories", zap.String("root", fw.root), zap.Int("count", len(dirs)))

	// Start watching in background
	fw.wg.Add(1)
	go fw.watch()

	return nil
}

// Stop stops the event loop and releases the watcher. It is safe to call
// more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()
		err = fw.watcher.Close()
	})
	return err
}

// watch is the main event loop
func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	rel, ok := fw.relative(event.Name)
	if !ok || fw.shouldIgnore(rel) {
		return
	}

	// fsnotify is not recursive; new directories are added as they appear
	if event.Has(fsnotify.Create) {
		if info, err := fw.fs.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.watcher.Add(event.Name); err != nil {
				fw.logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	// Removals and renames matter too: a deleted class drops its output
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	// Check if file matches patterns
	if !fw.matchesPattern(rel) {
		return
	}

	fw.logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
	fw.debouncer.Add(event.Name)
}

// findDirectories lists the root and every directory below it that is not
// excluded or hidden
func (fw *FileWatcher) findDirectories() ([]string, error) {
	var dirs []string
	err := afero.Walk(fw.fs, fw.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != fw.root {
			rel, ok := fw.relative(path)
			if !ok || fw.shouldIgnore(rel) || project.Excluded(rel+"/x", fw.excludes) {
				return filepath.SkipDir
			}
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// relative returns path relative to the root in slash form
func (fw *FileWatcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// shouldIgnore skips hidden entries and excluded paths
func (fw *FileWatcher) shouldIgnore(rel string) bool {
	// Ignore hidden files and directories
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return project.Excluded(rel, fw.excludes)
}

// matchesPattern checks rel against the include globs
func (fw *FileWatcher) matchesPattern(rel string) bool {
	for _, pattern := range fw.includes {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
	inflight sync.WaitGroup
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add adds a file to the debouncer and restarts the delay
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

	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush triggers the callback with accumulated files in sorted order.
// The callback runs outside the lock so it may take its time.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if len(d.files) == 0 || d.stopped {
		d.mutex.Unlock()
		return
	}

	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	sort.Strings(files)
	d.files = make(map[string]struct{})
	callback := d.callback
	d.inflight.Add(1)
	d.mutex.Unlock()

	defer d.inflight.Done()
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

// Stop cancels a pending flush and waits for a running callback; later
// Adds are ignored
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
	d.mutex.Unlock()

	d.inflight.Wait()
}
