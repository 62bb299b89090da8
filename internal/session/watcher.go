package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"imaginarium/internal/config"
	"imaginarium/internal/logging"
)

// ReloadFunc receives a fresh session loaded from the watched file, or the
// error that stopped the load. The session is nil only when it could not be
// created.
type ReloadFunc func(s *Session, loaded int, err error)

// Watcher reloads a definitions file into a new session whenever it changes.
// Reloads run one at a time on the watcher goroutine.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	cfg         *config.Config
	path        string
	onReload    ReloadFunc
	pending     time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats counts watcher activity.
type WatcherStats struct {
	Events    int
	Reloads   int
	Errors    int
	LastEvent time.Time
}

// NewWatcher creates a watcher for one definitions file.
func NewWatcher(cfg *config.Config, path string, onReload ReloadFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		cfg:         cfg,
		path:        abs,
		onReload:    onReload,
		debounceDur: 200 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Watch creates and starts a watcher in one step. The caller stops it.
func Watch(ctx context.Context, cfg *config.Config, path string, onReload ReloadFunc) (*Watcher, error) {
	w, err := NewWatcher(cfg, path, onReload)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Start loads the file once, then watches its directory. Editors often
// replace files instead of writing them, so the directory is watched rather
// than the file.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		_ = w.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	logging.Watcher("watching %s", w.path)

	w.reload(ctx)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatcherError("error closing watcher: %v", err)
	}
	logging.Watcher("stopped watching %s", w.path)
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatcherError("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounceDur
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()
			if due {
				w.reload(ctx)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	logging.WatcherDebug("%s: %s", event.Op, event.Name)

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEvent = time.Now()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) reload(ctx context.Context) {
	s, err := New(w.cfg)
	if err != nil {
		w.onReload(nil, 0, err)
		return
	}
	n, err := s.LoadDefinitions(ctx, w.path)

	w.mu.Lock()
	w.stats.Reloads++
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		logging.WatcherError("reload of %s failed: %v", w.path, err)
	} else {
		logging.Watcher("reloaded %s: %d sentences", w.path, n)
	}
	w.onReload(s, n, err)
}
