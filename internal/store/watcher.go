package store

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce coalesces the burst of events a single save produces
// (rename to .bak, create, write).
const watchDebounce = 150 * time.Millisecond

// FileWatcher watches the library documents and rehydrates the store when
// another process changes them.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	files   map[string]struct{} // cleaned document paths
	dirs    []string
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewFileWatcher creates a watcher for the given document paths.
func NewFileWatcher(store *Store, paths ...string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		store:   store,
		files:   make(map[string]struct{}, len(paths)),
		done:    make(chan struct{}),
	}

	seen := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		fw.files[p] = struct{}{}
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			fw.dirs = append(fw.dirs, dir)
		}
	}

	return fw, nil
}

// Start begins watching. The directories must exist.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	// Watch directories, not files: saves replace the file.
	for _, dir := range fw.dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
	}

	go fw.watch()
	return nil
}

func (fw *FileWatcher) watch() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if _, ours := fw.files[filepath.Clean(event.Name)]; !ours {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			zap.L().Debug("library changed on disk, rehydrating store")
			if err := fw.store.Hydrate(); err != nil {
				zap.L().Warn("failed to rehydrate store", zap.Error(err))
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			zap.L().Warn("file watcher error", zap.Error(err))

		case <-fw.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return nil
	}

	fw.running = false
	close(fw.done)
	return fw.watcher.Close()
}
