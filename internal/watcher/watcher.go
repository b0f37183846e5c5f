// Package watcher drives continuous incremental indexing: it watches a
// source tree recursively and, after a quiet period, hands the batch of
// changed files to a callback (typically an updater run followed by a save).
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change batch fires. Editors
// produce bursts of writes; one reindex per burst is enough.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a directory tree for source file changes.
type Watcher struct {
	fsw        *fsnotify.Watcher
	root       string
	extensions map[string]bool
	debounce   time.Duration

	mu          sync.Mutex
	accumulated map[string]bool
	timer       *time.Timer

	stopOnce sync.Once
}

// New creates a watcher over root for files with the given extensions
// (with dots). Subdirectories are watched recursively; hidden directories
// are skipped.
func New(root string, extensions []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extMap[ext] = true
	}

	w := &Watcher{
		fsw:         fsw,
		root:        root,
		extensions:  extMap,
		debounce:    debounce,
		accumulated: make(map[string]bool),
	}

	if err := w.watchRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks, delivering debounced change batches to callback until ctx is
// cancelled. Batches are sorted and deduplicated. Callback runs on the watch
// goroutine, so a slow callback delays the next batch rather than stacking
// reindexes.
func (w *Watcher) Run(ctx context.Context, callback func(files []string)) {
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// New directories join the watch set as they appear.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !w.extensions[filepath.Ext(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			w.accumulated[event.Name] = true
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
			w.mu.Unlock()

		case <-fire:
			w.mu.Lock()
			if len(w.accumulated) == 0 {
				w.mu.Unlock()
				continue
			}
			files := make([]string, 0, len(w.accumulated))
			for f := range w.accumulated {
				files = append(files, f)
			}
			w.accumulated = make(map[string]bool)
			w.mu.Unlock()

			sort.Strings(files)
			callback(files)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: watcher error: %v", err)
		}
	}
}

// Close stops the watcher; Run returns once the event stream closes. Safe to
// call more than once.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) watchRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
