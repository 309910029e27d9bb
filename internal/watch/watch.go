// Package watch reloads the task store when its backing file is changed by
// another process.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultDebounce = 150 * time.Millisecond
	reloadTimeout   = 5 * time.Second
)

// Reloader re-reads persisted state. *tasks.Store satisfies it.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher observes the directory holding a data file and calls Reload after
// a burst of writes to that file settles.
type Watcher struct {
	target   Reloader
	dir      string
	names    map[string]struct{}
	debounce time.Duration
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	onReload func()
	onError  func(error)
}

type Option func(*Watcher)

// WithDebounce overrides the default debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// OnReload registers a callback fired after each successful reload.
func OnReload(fn func()) Option {
	return func(w *Watcher) { w.onReload = fn }
}

// OnError registers a callback for watch and reload failures.
func OnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New prepares a watcher for path. SQLite keeps recent writes in a -wal
// sidecar, so changes to that file count as changes to path.
func New(path string, target Reloader, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch path is empty")
	}
	if target == nil {
		return nil, errors.New("reload target is nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	base := filepath.Base(abs)
	w := &Watcher{
		target:   target,
		dir:      filepath.Dir(abs),
		names:    map[string]struct{}{base: {}, base + "-wal": {}},
		debounce: defaultDebounce,
		logger:   slog.Default(),
		fsw:      fsw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	return w, nil
}

// Start begins watching. The data file itself may not exist yet; its
// directory is created if needed.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", w.dir, err)
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	go w.loop()
	return nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
	})
	return err
}

// Done is closed once the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	var timer *time.Timer
	schedule := func() {
		if timer == nil {
			timer = time.AfterFunc(w.debounce, w.reload)
			return
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.fail(err)
			}
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(evt) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		}
	}
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	_, ok := w.names[filepath.Base(evt.Name)]
	return ok
}

func (w *Watcher) reload() {
	select {
	case <-w.stop:
		return
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if err := w.target.Reload(ctx); err != nil {
		w.fail(err)
		return
	}
	w.logger.Debug("tasks reloaded from disk", "dir", w.dir)
	if w.onReload != nil {
		w.onReload()
	}
}

func (w *Watcher) fail(err error) {
	w.logger.Warn("watch failed", "dir", w.dir, "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}
