package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/primitives"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives a freshly built graph and its idle node.
type ReloadFunc func(graph *motionchart.Graph, idle motionchart.NodeID, cfg *primitives.GraphConfig) error

// GraphSetter is satisfied by the realtime controller and runtime.
type GraphSetter interface {
	SetGraph(graph motionchart.TransitionGraph, start motionchart.NodeID) error
}

// SetGraphOnReload adapts a GraphSetter into a ReloadFunc.
func SetGraphOnReload(s GraphSetter) ReloadFunc {
	return func(g *motionchart.Graph, idle motionchart.NodeID, _ *primitives.GraphConfig) error {
		return s.SetGraph(g, idle)
	}
}

// GraphWatcher reloads a graph config file when it changes. Invalid configs
// are logged and skipped; the previous graph stays active.
type GraphWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload ReloadFunc
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	version string
	reloads int

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// WatcherOption configures a GraphWatcher.
type WatcherOption func(*GraphWatcher)

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *GraphWatcher) { w.logger = l }
}

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *GraphWatcher) { w.debounce = d }
}

// NewGraphWatcher watches the directory containing path, so atomic
// rename-on-save is seen as well as in-place writes.
func NewGraphWatcher(path string, onReload ReloadFunc, opts ...WatcherOption) (*GraphWatcher, error) {
	if onReload == nil {
		return nil, errors.New("reload callback is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &GraphWatcher{
		path:     abs,
		watcher:  fw,
		onReload: onReload,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("graph_file", abs)
	if cfg, err := primitives.Load(abs); err == nil {
		w.version = primitives.ComputeVersion(cfg)
	}
	return w, nil
}

// Start runs the watch loop until ctx is cancelled or Stop is called.
func (w *GraphWatcher) Start(ctx context.Context) {
	if w.started.CompareAndSwap(false, true) {
		go w.watchLoop(ctx)
	}
}

// Stop ends the watch loop and waits for it to exit.
func (w *GraphWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
	})
	if w.started.Load() {
		<-w.done
	}
	return err
}

// Version is the config version of the last applied graph.
func (w *GraphWatcher) Version() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// Reloads counts applied reloads.
func (w *GraphWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *GraphWatcher) watchLoop(ctx context.Context) {
	defer close(w.done)

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C
	defer debounceTimer.Stop()
	pending := false

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
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			if pending {
				pending = false
				if err := w.Reload(); err != nil {
					w.logger.Warn("graph reload skipped", "error", err)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("graph watcher error", "error", err)
		}
	}
}

// Reload loads and builds the config and hands the graph to the callback.
// An unchanged config version is not reapplied.
func (w *GraphWatcher) Reload() error {
	cfg, err := primitives.Load(w.path)
	if err != nil {
		return err
	}
	version := primitives.ComputeVersion(cfg)
	if version == w.Version() {
		w.logger.Debug("graph unchanged", "version", version)
		return nil
	}
	graph, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	idle, err := cfg.IdleNode()
	if err != nil {
		return fmt.Errorf("idle node: %w", err)
	}
	if err := w.onReload(graph, idle, cfg); err != nil {
		return fmt.Errorf("apply graph %s: %w", version, err)
	}

	w.mu.Lock()
	w.version = version
	w.reloads++
	w.mu.Unlock()
	w.logger.Info("graph reloaded", "graph", cfg.ID, "version", version, "nodes", len(cfg.Nodes))
	return nil
}
