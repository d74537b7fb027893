package app

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/logging"
	"decknotes/internal/service"
	"decknotes/internal/storage"
)

// pageWatcher watches the page root for changes made outside this process
// (the HTTP or MCP transports running standalone, a sync tool, a migration)
// and emits pages:changed so the frontend refreshes its listing.
//
// Changes are debounced per game: a burst of writes to one game produces a
// single event once the burst settles.
type pageWatcher struct {
	root     string
	debounce time.Duration
	emitter  service.EventEmitter
	log      logger.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timers  map[int]*time.Timer // gameID → pending emit
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newPageWatcher(root string, debounce time.Duration, emitter service.EventEmitter, log logger.Logger) *pageWatcher {
	return &pageWatcher{
		root:     root,
		debounce: debounce,
		emitter:  emitter,
		log:      log,
		timers:   make(map[int]*time.Timer),
	}
}

// Start watches the root and every game directory already present. A missing
// root leaves the watcher idle; the page store creates it lazily and the app
// picks it up on next start.
func (w *pageWatcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return err
	}
	w.watcher = fsw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	entries, _ := filepath.Glob(filepath.Join(w.root, "*"))
	for _, dir := range entries {
		w.addGameDir(dir)
	}

	go w.loop(ctx)
	return nil
}

// Stop terminates the watch loop and drops pending emits.
func (w *pageWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh

	w.mu.Lock()
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
	w.mu.Unlock()
}

func (w *pageWatcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warningf(w.log, "[watcher] %v", err)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *pageWatcher) handle(ctx context.Context, event fsnotify.Event) {
	dir, name := filepath.Split(filepath.Clean(event.Name))
	dir = filepath.Clean(dir)

	// Direct child of the root: a game directory appeared or vanished.
	if dir == filepath.Clean(w.root) {
		gameID, err := strconv.Atoi(name)
		if err != nil {
			return
		}
		if event.Has(fsnotify.Create) {
			w.addGameDir(event.Name)
		}
		w.schedule(ctx, gameID)
		return
	}

	// File inside a game directory.
	if filepath.Dir(dir) != filepath.Clean(w.root) {
		return
	}
	gameID, err := strconv.Atoi(filepath.Base(dir))
	if err != nil {
		return
	}
	if _, ok := storage.PageNumber(name); !ok && name != storage.LastPageFileName {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}
	w.schedule(ctx, gameID)
}

func (w *pageWatcher) addGameDir(path string) {
	if _, err := strconv.Atoi(filepath.Base(path)); err != nil {
		return
	}
	if err := w.watcher.Add(path); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		logging.Debugf(w.log, "[watcher] add %s: %v", path, err)
	}
}

// schedule (re)arms the debounce timer of a game.
func (w *pageWatcher) schedule(ctx context.Context, gameID int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[gameID]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[gameID] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, gameID)
		w.mu.Unlock()
		w.emitter.Emit(ctx, service.EventPagesChanged, service.PageEvent{GameID: gameID})
	})
}
