package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/dyntable/pkg/record"
)

// DefaultDebounce collapses bursts of file events (editors often write,
// truncate and rename in quick succession) into one reload.
const DefaultDebounce = 150 * time.Millisecond

// LoadFunc reads the dataset.
type LoadFunc func() ([]record.Record, error)

// SendFunc receives each reloaded dataset or the error that prevented it.
type SendFunc func([]record.Record, error)

// Watcher reloads a file whenever it changes on disk.
type Watcher struct {
	Path     string
	Load     LoadFunc
	Send     SendFunc
	Debounce time.Duration
}

// Watch blocks until ctx is done, calling load and then send after every
// change to path. The parent directory is watched so files replaced by
// rename are still followed.
func Watch(ctx context.Context, path string, load LoadFunc, send SendFunc) error {
	w := Watcher{Path: path, Load: load, Send: send, Debounce: DefaultDebounce}
	return w.Run(ctx)
}

// Run starts watching. See Watch.
func (w Watcher) Run(ctx context.Context) error {
	lgr := logr.FromContextOrDiscard(ctx)
	target, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.Path, err)
	}
	target = filepath.Clean(target)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	lgr.V(1).Info("watching input", "path", target)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			lgr.V(2).Info("file event", "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			lgr.Error(err, "watch error")
		case <-timer.C:
			data, err := w.Load()
			if err != nil {
				lgr.Error(err, "reload failed", "path", target)
			} else {
				lgr.V(1).Info("reloaded input", "path", target, "records", len(data))
			}
			w.Send(data, err)
		}
	}
}
