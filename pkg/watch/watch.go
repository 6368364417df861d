// Package watch triggers index refreshes from filesystem events. It
// supplements the index's own throttled mtime polling: with a watcher
// attached, changes show up without waiting for the next poll window.
package watch

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 500 * time.Millisecond

// Watcher observes one reports directory and invokes a callback after a
// burst of changes settles.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func()
	done     chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New starts watching dir. onChange runs on the watcher goroutine after
// events debounce; it should be cheap or dispatch its own work.
func New(dir string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:  fsw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		case <-w.done:
			return
		}
	}
}

// schedule resets the debounce timer; the callback fires once per burst.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceWindow, w.onChange)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
