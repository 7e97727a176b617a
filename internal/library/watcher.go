package library

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pedalprompt/internal/eventbus"
)

// DefaultDebounce coalesces the burst of events an editor save or a copy
// produces into one reload
const DefaultDebounce = 750 * time.Millisecond

// ErrWatcherStarted is returned by a second Start
var ErrWatcherStarted = errors.New("watcher already started")

// Watcher publishes LibraryChangedEvent when decks or collection folders
// under the root change. It watches the root and each collection folder;
// the cache directory is never watched.
type Watcher struct {
	root     string
	bus      eventbus.EventBus
	debounce time.Duration
	ignore   string

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	timer   *time.Timer
	started bool
	done    chan struct{}
}

// NewWatcher creates a watcher for root. Files starting with ignorePrefix
// (editor lock files) do not trigger reloads.
func NewWatcher(root string, bus eventbus.EventBus, debounce time.Duration, ignorePrefix string) *Watcher {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{root: filepath.Clean(root), bus: bus, debounce: debounce, ignore: ignorePrefix}
}

// Start begins watching
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrWatcherStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return err
	}
	entries, err := os.ReadDir(w.root)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				w.addDir(fsw, filepath.Join(w.root, e.Name()))
			}
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel
	w.started = true
	w.done = make(chan struct{})

	go w.loop(runCtx, fsw, w.done)
	return nil
}

// Stop ends watching and drops any pending notification
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	fsw, done := w.fsw, w.done
	w.fsw = nil
	w.mu.Unlock()

	fsw.Close()
	<-done
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}

			// New collection folders need their own watch
			if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == w.root {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addDir(fsw, event.Name)
				}
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.trigger()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Watching %s: %v", w.root, err)
		}
	}
}

func (w *Watcher) addDir(fsw *fsnotify.Watcher, dir string) {
	if err := fsw.Add(dir); err != nil {
		log.Printf("Cannot watch %s: %v", dir, err)
	}
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	return w.ignore != "" && strings.HasPrefix(base, w.ignore)
}

// trigger (re)arms the debounce timer
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	started := w.started
	w.timer = nil
	w.mu.Unlock()

	if started {
		w.bus.Publish(eventbus.LibraryChangedEvent{Root: w.root})
	}
}
