// Package watch keeps the consolidated view current while the hierarchical
// record files are edited by hand.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/store"
)

// DefaultDebounce collapses bursts of edits into one rebuild
const DefaultDebounce = 500 * time.Millisecond

// Callback observes each rebuild
type Callback func(res *store.ConsolidateResult, err error)

// Watcher rebuilds the consolidated view after record files change. Only the
// category directories are watched, so the view's own writes never trigger
// a rebuild.
type Watcher struct {
	store    *store.Store
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      *zap.SugaredLogger

	mu        sync.Mutex
	timer     *time.Timer
	callbacks []Callback
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(w *Watcher) { w.log = logger.OrNop(log) }
}

// New watches every category and subcategory directory of s
func New(s *store.Store, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	w := &Watcher{store: s, fs: fw, debounce: DefaultDebounce, log: logger.OrNop(nil)}
	for _, opt := range opts {
		opt(w)
	}

	for _, category := range attribute.Categories {
		dir := filepath.Join(s.Dir(), string(category))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "create %s", dir)
		}
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read %s", dir)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.fs.Add(filepath.Join(dir, e.Name())); err != nil {
				return errors.Wrapf(err, "watch %s", e.Name())
			}
		}
	}
	return nil
}

// OnConsolidate registers a callback run after every rebuild
func (w *Watcher) OnConsolidate(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run processes events until ctx is done, then stops the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	w.log.Infow("watching attribute library", logger.FieldPath, w.store.Dir())
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// a new subcategory; files may already be inside it
			if err := w.fs.Add(event.Name); err != nil {
				w.log.Warnw("cannot watch new directory", logger.FieldPath, event.Name, logger.FieldError, err)
			}
			w.schedule()
			return
		}
	}
	if !Relevant(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debugw("record file changed",
		logger.FieldFile, event.Name,
		"op", event.Op.String())
	w.schedule()
}

// Relevant reports whether a change to path can alter the library: record
// files only, never temp or backup files.
func Relevant(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".json") && !fsutil.IsTemp(name) && !fsutil.IsBackup(name)
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.rebuild)
}

func (w *Watcher) rebuild() {
	res, err := w.store.Consolidate()
	if err != nil {
		w.log.Warnw("consolidation skipped", logger.FieldError, err)
	} else if res.Changed {
		w.log.Infow("consolidated view rebuilt", logger.FieldCount, res.Records)
	}

	w.mu.Lock()
	callbacks := append([]Callback(nil), w.callbacks...)
	w.mu.Unlock()
	for _, cb := range callbacks {
		cb(res, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	_ = w.fs.Close()
}
