package inputs

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a single file. Watching the parent directory
// catches editors that save by replacing the file.
type Watcher struct {
	w       *fsnotify.Watcher
	changes chan string

	mu   sync.Mutex
	path string
	dir  string
}

func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{w: fw, changes: make(chan string, 1)}
	go w.loop()
	return w, nil
}

// Changes delivers the watched path after it was written or replaced.
// Bursts of events collapse into one pending notification.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Watch switches the watcher to path.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir != w.dir {
		if w.dir != "" {
			_ = w.w.Remove(w.dir)
		}
		if err := w.w.Add(dir); err != nil {
			w.dir, w.path = "", ""
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dir = dir
	}
	w.path = abs
	return nil
}

func (w *Watcher) watched() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := w.watched()
			if path == "" || filepath.Clean(event.Name) != path {
				continue
			}
			select {
			case w.changes <- path:
			default:
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher: %v", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}
