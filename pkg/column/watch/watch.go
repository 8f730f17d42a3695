// Package watch reloads a column definition file whenever it changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/faciam-dev/crudkit/pkg/column"
	"github.com/faciam-dev/crudkit/pkg/column/codec"
)

// Func receives the decoded table, or the error that prevented decoding.
type Func func(*column.Table, error)

// Watcher watches one definition file. Editors often replace files instead
// of writing them in place, so the parent directory is watched.
type Watcher struct {
	path     string
	debounce time.Duration
	fn       Func

	stopOnce sync.Once
}

func New(path string, debounce time.Duration, fn Func) *Watcher {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{path: filepath.Clean(path), debounce: debounce, fn: fn}
}

// Start loads the file once, then again after every burst of changes.
func (w *Watcher) Start(ctx context.Context) (stop func(), err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	w.load()

	go func() {
		defer fw.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != w.path || ev.Op == fsnotify.Chmod {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.fn(nil, err)
			case <-fire:
				fire = nil
				w.load()
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()
	return func() { w.stopOnce.Do(cancel) }, nil
}

func (w *Watcher) load() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.fn(nil, err)
		return
	}
	w.fn(codec.DecodeYAML(data))
}
