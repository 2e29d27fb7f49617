package schema

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures a Watcher.
type WatchOptions struct {
	// SettleDelay is how long the file must stay quiet before it is reloaded.
	SettleDelay time.Duration
	// OnReload, if set, is called after every reload attempt with its result.
	OnReload func(error)
}

func (o *WatchOptions) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 100 * time.Millisecond
	}
}

// Watcher reloads a schema file when it changes and swaps the result into a
// Live. An edit that fails to load or build is logged and the previous
// registry stays in place.
type Watcher struct {
	path   string
	live   *Live
	deps   Deps
	opts   WatchOptions
	logger *slog.Logger

	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches path. The parent directory is watched so editors that
// replace the file by rename are noticed.
func NewWatcher(path string, live *Live, deps Deps, logger *slog.Logger, opts WatchOptions) (*Watcher, error) {
	opts.setDefaults()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to add watch: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Watcher{
		path:    path,
		live:    live,
		deps:    deps,
		opts:    opts,
		logger:  logger,
		watcher: fw,
	}, nil
}

// Run processes file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("schema watcher error", "error", err)
		}
	}
}

// schedule debounces bursts of writes into one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.SettleDelay, w.reload)
}

// Reload loads the file now.
func (w *Watcher) Reload() error {
	s, err := Load(w.path)
	if err != nil {
		return err
	}
	r, err := Build(s, w.deps)
	if err != nil {
		return err
	}
	if err := w.live.Swap(r); err != nil {
		return err
	}
	w.logger.Info("field schema reloaded", "path", w.path, "fields", len(s.Fields))
	return nil
}

func (w *Watcher) reload() {
	err := w.Reload()
	if err != nil {
		w.logger.Error("field schema reload failed, keeping previous schema", "path", w.path, "error", err)
	}
	if w.opts.OnReload != nil {
		w.opts.OnReload(err)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
