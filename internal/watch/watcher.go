// Package watch triggers re-analysis when files under a project root
// change. Events are debounced: rapid sequences of writes to the same files
// (editor save storms, build output) collapse into one batch delivered after
// a quiet period.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a batch of changes is flushed.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the deduplicated paths of a flushed batch.
type Handler func(paths []string)

// Watcher watches a directory tree recursively and delivers debounced
// change batches to a handler. The handler runs on the watch goroutine, so
// a slow handler delays subsequent batches rather than piling up work.
type Watcher struct {
	root     string
	debounce time.Duration
	handler  Handler
	accepts  func(path string) bool
	log      *zap.Logger

	fsw *fsnotify.Watcher
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the quiet period.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithFilter restricts which paths generate batches. Paths failing the
// filter are dropped at event time.
func WithFilter(accepts func(path string) bool) WatcherOption {
	return func(w *Watcher) {
		w.accepts = accepts
	}
}

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// New creates a watcher over root. Every existing subdirectory is watched;
// directories created later are added as their create events arrive.
func New(root string, handler Handler, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		handler:  handler,
		accepts:  func(string) bool { return true },
		log:      zap.NewNop(),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying OS watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run blocks, collecting events and flushing debounced batches to the
// handler, until ctx is canceled or the event stream closes.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var flushCh <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]struct{})
		w.log.Info("flushing change batch", zap.Int("files", len(paths)))
		w.handler(paths)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				flush()
				return nil
			}
			// Newly created directories must be added to the watch set.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.log.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !w.accepts(event.Name) {
				continue
			}
			w.log.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			flushCh = timer.C

		case <-flushCh:
			flushCh = nil
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				flush()
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}
