// Package watch feeds filesystem activity into the dispatch engine:
// files created or modified under monitored directories are submitted
// as new targets once they go quiet.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// Submitter is the slice of the engine the watcher needs.
// Implemented by engine.Manager.
type Submitter interface {
	QueueTarget(ctx context.Context, src work.Source) (*work.Target, error)
}

// Watcher monitors directories and queues changed files as targets.
//
// Writes are debounced per path: a file being written in several chunks
// is queued once, after its last event has been quiet for the debounce
// interval. Duplicate submissions of unchanged content are already a
// no-op at the engine boundary, so over-triggering is cheap.
type Watcher struct {
	watcher  *fsnotify.Watcher
	engine   Submitter
	logger   *slog.Logger
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher submitting to eng. A nil logger uses
// slog.Default().
func New(eng Submitter, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:  fsw,
		engine:   eng,
		logger:   logger,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Add registers a directory for monitoring. Must be called before Run
// or concurrently with it; fsnotify handles both.
func (w *Watcher) Add(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path %s is not a directory", dir)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching directory", "path", dir)
	return nil
}

// Run processes filesystem events until ctx is cancelled.
// Watcher errors are logged and monitoring continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			w.trigger(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// shouldProcess filters events down to content-bearing changes on
// regular, non-hidden files.
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return false
	}
	return true
}

// trigger (re)arms the per-path debounce timer; when it fires, the file
// is submitted as a target.
func (w *Watcher) trigger(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := w.engine.QueueTarget(ctx, work.FileSource(path)); err != nil {
			w.logger.Warn("queue watched file failed", "path", path, "error", err)
			return
		}
		w.logger.Info("queued watched file", "path", path)
	})
}
