package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"mycelica/patchscan/internal/patch"
)

// Handler receives each fresh scan, or the error that stopped it
type Handler func(res *patch.Result, err error)

// Watcher re-scans one patch file whenever it changes on disk
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	handler  Handler
	logger   *slog.Logger

	mu       sync.Mutex
	pending  bool
	lastSeen time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

type Config struct {
	Path       string
	DebounceMs int
	Handler    Handler
	Logger     *slog.Logger
}

// New watches the directory holding cfg.Path, since editors often save by
// writing a new file and renaming it over the old one.
func New(cfg Config) (*Watcher, error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("watch: handler is required")
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cfg.Path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	debounceMs := cfg.DebounceMs
	if debounceMs <= 0 {
		debounceMs = 200
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher:  fsWatcher,
		path:     abs,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		handler:  cfg.Handler,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Run delivers an initial scan, then one scan per settled burst of changes.
// It blocks until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.rescan()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		case <-ticker.C:
			if w.due() {
				w.rescan()
			}
		}
	}
}

// Stop ends Run and releases the underlying watcher
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}

	w.logger.Debug("patch changed", "path", w.path, "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = true
	w.lastSeen = time.Now()
}

// due reports whether a pending change has been quiet for the debounce window
func (w *Watcher) due() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.lastSeen) < w.debounce {
		return false
	}
	w.pending = false
	return true
}

func (w *Watcher) rescan() {
	res, err := patch.ScanFile(w.path)
	if err != nil {
		w.logger.Warn("rescan failed", "path", w.path, "error", err)
	} else {
		w.logger.Info("patch rescanned", "path", w.path,
			"nodes", len(res.Nodes), "connections", len(res.Connections))
	}
	w.handler(res, err)
}
