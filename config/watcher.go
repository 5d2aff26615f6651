package config

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Watcher polls a configuration file's modification time and invokes a
// callback when it changes. Polling keeps the watcher dependency-free and
// works on filesystems without change notification.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(path string)
	logger   *zap.Logger

	mu      sync.Mutex
	lastMod time.Time
	running bool
	stop    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger }
}

// NewWatcher creates a watcher for a config file. The callback runs on the
// watcher goroutine; it should hand off heavy reload work.
func NewWatcher(path string, onChange func(path string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     path,
		interval: time.Second,
		onChange: onChange,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if info, err := os.Stat(path); err == nil {
		w.lastMod = info.ModTime()
	} else {
		w.logger.Warn("config file does not exist yet, watching for creation",
			zap.String("path", path))
	}
	return w
}

// Start begins polling until the context is cancelled or Stop is called.
// A stopped watcher may be started again.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	stop := w.stop
	w.mu.Unlock()

	go w.loop(ctx, stop)
}

// Stop halts polling.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stop)
		w.running = false
	}
}

func (w *Watcher) loop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.lastMod)
	if changed {
		w.lastMod = info.ModTime()
	}
	w.mu.Unlock()

	if changed {
		w.logger.Info("config file changed",
			zap.String("path", w.path))
		w.onChange(w.path)
	}
}
