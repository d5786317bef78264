package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long a file must stay quiet before a rebuild.
const defaultDebounce = 150 * time.Millisecond

// fileWatcher reports debounced changes to a single file.
//
// The parent directory is watched rather than the file so editors that save
// by writing a temp file and renaming it over the original are still seen.
type fileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	// Changes receives one value per quiet period after the file changed.
	Changes chan struct{}
	// Errors receives watcher failures; watching continues after them.
	Errors chan error

	stopOnce sync.Once
	done     chan struct{}
}

func newFileWatcher(path string, debounce time.Duration) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &fileWatcher{
		path:     abs,
		watcher:  w,
		debounce: debounce,
		Changes:  make(chan struct{}, 1),
		Errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start processes events until ctx is cancelled or Stop is called.
func (w *fileWatcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *fileWatcher) loop(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	fire := func() {
		select {
		case w.Changes <- struct{}{}:
		default: // a rebuild is already pending
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// Stop ends watching. It is safe to call more than once.
func (w *fileWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
