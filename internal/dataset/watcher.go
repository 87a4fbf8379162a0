package dataset

import (
	"context"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/paulmach/orb"

	"github.com/edgefn/roadbook/pkg/directions"
)

// Opener constructs a local engine over a dataset directory.
type Opener func(dir string) (directions.LocalEngine, error)

// Watcher keeps a local engine loaded from a dataset directory and swaps
// it atomically whenever the directory contents change. It implements
// directions.LocalEngine itself, so the client holds one stable handle
// across reloads.
type Watcher struct {
	dir  string
	open Opener
	fsw  *fsnotify.Watcher

	mu     sync.RWMutex
	engine directions.LocalEngine

	done chan struct{}
}

// Watch opens the initial engine and starts watching the directory.
func Watch(dir string, open Opener) (*Watcher, error) {
	engine, err := open(dir)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		dir:    dir,
		open:   open,
		fsw:    fsw,
		engine: engine,
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Route delegates to the currently loaded engine.
func (w *Watcher) Route(ctx context.Context, origin, destination orb.Point) ([]byte, error) {
	w.mu.RLock()
	engine := w.engine
	w.mu.RUnlock()
	return engine.Route(ctx, origin, destination)
}

// Close stops watching. The last loaded engine stays usable.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[RDB] dataset watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// reload reopens the dataset. A failed reopen keeps the previous engine.
func (w *Watcher) reload() {
	engine, err := w.open(w.dir)
	if err != nil {
		log.Printf("[RDB] dataset reload failed, keeping previous engine: %v", err)
		return
	}
	w.mu.Lock()
	w.engine = engine
	w.mu.Unlock()
	log.Printf("[RDB] dataset reloaded from %s", w.dir)
}
