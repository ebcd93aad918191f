// Package watcher wraps fsnotify with the debounced create/change/remove
// events the sync engine consumes, one per-path timer bucket at a time so a
// burst of writes to the same file collapses into a single reindex.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codeindex/internal/config"
)

// EventType classifies a debounced filesystem event.
type EventType string

const (
	EventCreate EventType = "create"
	EventChange EventType = "change"
	EventRemove EventType = "remove"
)

// Event is what a debounce bucket finally delivers.
type Event struct {
	Path string
	Type EventType
}

// Watcher recursively watches a project root and emits debounced Events on
// Events(). Stop cancels every pending per-path timer (§5 "watchers must
// cancel pending debounced tasks on stop()").
type Watcher struct {
	cfg   *config.Config
	fsw   *fsnotify.Watcher
	out   chan Event
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]EventType
}

// New creates a Watcher over cfg.RootDirectory. Call Start to begin
// receiving filesystem events, and range over Events() to consume them.
func New(cfg *config.Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	debounce := time.Duration(cfg.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		out:      make(chan Event, 64),
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]EventType),
	}, nil
}

// Events is the channel debounced filesystem events arrive on.
func (w *Watcher) Events() <-chan Event { return w.out }

// Start adds recursive watches under the project root and begins the event
// loop. It returns once the initial watch tree is in place.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.cfg.RootDirectory); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop cancels every pending debounce timer, closes the fsnotify watcher
// and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()

	w.mu.Lock()
	for _, t := range w.timers {
		if t.Stop() {
			w.wg.Done() // timer never fired: release the Add it was scheduled with
		}
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.out)
	return err
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if w.excludedDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("watcher: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) excludedDir(path string) bool {
	rel, err := filepath.Rel(w.cfg.RootDirectory, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.cfg.Exclude {
		base := pattern
		if len(base) > 3 && base[len(base)-3:] == "/**" {
			base = base[:len(base)-3]
		}
		if len(base) > 3 && base[:3] == "**/" {
			base = base[3:]
		}
		if ok, _ := filepath.Match(base, filepath.Base(path)); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	info, statErr := os.Stat(ev.Name)
	if statErr != nil {
		if ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0 {
			w.schedule(ev.Name, EventRemove)
		}
		return
	}
	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 && !w.excludedDir(ev.Name) {
			if err := w.fsw.Add(ev.Name); err != nil {
				log.Printf("watcher: failed to add watch for new directory %s: %v", ev.Name, err)
			}
		}
		return
	}
	if w.cfg.MaxFileSize > 0 && info.Size() > w.cfg.MaxFileSize {
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		w.schedule(ev.Name, EventCreate)
	case ev.Op&fsnotify.Write != 0:
		w.schedule(ev.Name, EventChange)
	case ev.Op&fsnotify.Remove != 0:
		w.schedule(ev.Name, EventRemove)
	case ev.Op&fsnotify.Rename != 0:
		w.schedule(ev.Name, EventRemove)
	}
}

// schedule resets path's debounce timer: a burst of events collapses into
// the single latest event type (except that a create followed by changes
// stays a create), delivered debounce after the last one.
func (w *Watcher) schedule(path string, t EventType) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[path]; ok && prev == EventCreate && t == EventChange {
		t = EventCreate
	}
	w.pending[path] = t
	if existing, ok := w.timers[path]; ok {
		if existing.Stop() {
			w.wg.Done()
		}
	}
	w.wg.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.flush(path)
	})
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	t, ok := w.pending[path]
	delete(w.pending, path)
	delete(w.timers, path)
	w.mu.Unlock()
	if !ok {
		return
	}

	select {
	case w.out <- Event{Path: path, Type: t}:
	case <-w.ctx.Done():
	}
}
