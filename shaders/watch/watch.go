// Package watch tells the render loop when shader sources on disk have changed.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Files tracks a fixed set of files. Changes are picked up from fsnotify events
// and, for file systems without notifications, by comparing modification times.
type Files struct {
	lock    sync.Mutex
	paths   []string
	mtimes  map[string]time.Time
	dirty   bool
	watcher *fsnotify.Watcher
	done    chan struct{}
	closed  sync.Once
}

func New(paths ...string) (*Files, error) {
	f := &Files{
		paths:  make([]string, len(paths)),
		mtimes: make(map[string]time.Time),
		done:   make(chan struct{}),
	}
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to resolve %q", p)
		}
		f.paths[i] = abs
		f.mtimes[abs] = modTime(abs)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[watch] fsnotify unavailable, polling modification time only: %v", err)
		return f, nil
	}
	// editors often replace files, so watch the directories
	dirs := make(map[string]bool)
	for _, p := range f.paths {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			log.Printf("[watch] Failed to watch %q: %v", dir, err)
		}
	}
	f.watcher = watcher
	go f.loop()
	return f, nil
}

func modTime(path string) time.Time {
	if fi, err := os.Stat(path); err == nil {
		return fi.ModTime()
	}
	return time.Time{}
}

func (f *Files) tracked(name string) bool {
	for _, p := range f.paths {
		if p == name {
			return true
		}
	}
	return false
}

func (f *Files) loop() {
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || !f.tracked(name) {
				continue
			}
			f.lock.Lock()
			f.dirty = true
			f.lock.Unlock()
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watch] %v", err)
		case <-f.done:
			return
		}
	}
}

// Changed reports whether any file changed since the previous call.
func (f *Files) Changed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	changed := f.dirty
	f.dirty = false
	for _, p := range f.paths {
		if mt := modTime(p); !mt.Equal(f.mtimes[p]) {
			f.mtimes[p] = mt
			changed = true
		}
	}
	return changed
}

// Paths returns the absolute paths of the tracked files.
func (f *Files) Paths() []string { return f.paths }

// Close stops watching. Calling it again is a no-op.
func (f *Files) Close() error {
	var err error
	f.closed.Do(func() {
		close(f.done)
		if f.watcher != nil {
			err = f.watcher.Close()
		}
	})
	return err
}
