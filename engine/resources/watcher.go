package resources

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kestrel3d/render-core/engine/core"
)

// Watcher schedules a reload through Cache's loader thread whenever a
// resource's backing source file changes on disk. It is a plain
// (path -> handle) reload trigger, not an asset-type registry.
type Watcher struct {
	cache *Cache
	fs    *fsnotify.Watcher

	mu       sync.Mutex
	byPath   map[string]*Handle
	decoders map[string]Decoder

	done chan struct{}
}

// NewWatcher starts a watch loop that reloads resources into cache as their
// source files change.
func NewWatcher(cache *Cache) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		cache:    cache,
		fs:       fs,
		byPath:   make(map[string]*Handle),
		decoders: make(map[string]Decoder),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch ties path to h: the next create-or-write event on path schedules an
// asynchronous reload of h through decode. Watching the same path again
// replaces the handle and decoder it reloads.
func (w *Watcher) Watch(path string, h *Handle, decode Decoder) error {
	w.mu.Lock()
	w.byPath[path] = h
	w.decoders[path] = decode
	w.mu.Unlock()
	return w.fs.Add(path)
}

// Unwatch stops watching path; a later event on it is ignored.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	delete(w.byPath, path)
	delete(w.decoders, path)
	w.mu.Unlock()
	return w.fs.Remove(path)
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.mu.Lock()
			h, known := w.byPath[e.Name]
			decode := w.decoders[e.Name]
			w.mu.Unlock()
			if !known {
				continue
			}
			if err := w.cache.Load(h, false, decode); err != nil {
				core.LogError("resources: reload of %s failed: %v", e.Name, err)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			core.LogError("resources: watcher: %v", err)

		case <-w.done:
			w.fs.Close()
			return
		}
	}
}

// Close stops the watch loop and releases the underlying fsnotify watcher.
func (w *Watcher) Close() {
	close(w.done)
}
