// Package watch rebuilds assets when their inputs change.
//
// A [Watcher] observes a fixed set of files (the config file and the fonts
// it names). It watches each file's parent directory rather than the file
// itself so editors and atomic writers that replace the file by rename are
// still seen. When fsnotify is unavailable it falls back to polling.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval used when polling.
const DefaultPollInterval = 2 * time.Second

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors a set of files using fsnotify with a polling fallback.
type Watcher struct {
	// files holds the cleaned absolute paths being monitored.
	files map[string]struct{}
	// dirs are the parent directories of files, deduplicated.
	dirs []string
	// events delivers a signal each time a watched file changes.
	// The channel is buffered to 1 so back-to-back writes coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to signal goroutines to exit.
	done chan struct{}

	mu  sync.Mutex
	fsw *fsnotify.Watcher

	once         sync.Once
	polling      atomic.Bool
	pollInterval time.Duration
}

// New creates a Watcher for the given files. Files that don't exist yet are
// watched too; creating one counts as a change.
func New(files ...string) (*Watcher, error) {
	w, err := newWatcher(files, DefaultPollInterval)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}
	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			slog.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}

	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

func newWatcher(files []string, pollInterval time.Duration) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	w := &Watcher{
		files:        make(map[string]struct{}, len(files)),
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		w.dirs = append(w.dirs, filepath.Dir(abs))
	}
	slices.Sort(w.dirs)
	w.dirs = slices.Compact(w.dirs)
	return w, nil
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when a watched file changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
			w.fsw = nil
		}
	})
	return err
}

// watch forwards fsnotify events for watched files. On an fsnotify error it
// closes the native watcher and switches to polling.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.watched(event.Name) {
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.mu.Lock()
			if w.fsw != nil {
				w.fsw.Close()
				w.fsw = nil
			}
			w.mu.Unlock()
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// poll periodically stats every watched file and signals when any
// modification time advances or a missing file appears.
func (w *Watcher) poll() {
	last := w.stat()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := w.stat()
			for path, mod := range cur {
				if prev, ok := last[path]; !ok || mod.After(prev) {
					w.notify()
					break
				}
			}
			last = cur
		}
	}
}

// stat returns the modification time of each watched file that exists.
func (w *Watcher) stat() map[string]time.Time {
	out := make(map[string]time.Time, len(w.files))
	for path := range w.files {
		if info, err := os.Stat(path); err == nil {
			out[path] = info.ModTime()
		}
	}
	return out
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op, coalescing rapid successive changes.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}

// ///////////////////////////////////////////////
// Rebuild Loop
// ///////////////////////////////////////////////

// Run calls build each time events settles: a signal starts a quiet timer,
// further signals restart it, and build runs once the timer fires. A build
// error is logged and the loop keeps going. Run returns ctx.Err() when ctx
// is cancelled.
func Run(ctx context.Context, events <-chan struct{}, quiet time.Duration, build func(context.Context) error) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			if timer == nil {
				timer = time.NewTimer(quiet)
			} else {
				timer.Reset(quiet)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := build(ctx); err != nil {
				slog.Error("rebuild failed", "error", err)
			}
		}
	}
}
