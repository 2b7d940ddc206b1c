// Package watch re-runs the export pipeline when notes in the vault change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

const (
	defaultDebounce  = 500 * time.Millisecond
	defaultExtension = ".md"
	tickInterval     = 50 * time.Millisecond
)

// RunFunc performs one full pipeline run.
type RunFunc func(ctx context.Context) error

// Config describes what the watcher observes.
type Config struct {
	// Root is the vault directory, watched recursively.
	Root string
	// Debounce is the quiet period after the last change before a run starts.
	Debounce time.Duration
	// Ignore lists files or directories whose changes never trigger a run,
	// typically the run log, the index and the destination tree.
	Ignore []string
	// Extension selects the files that trigger runs (defaults to ".md").
	Extension string
}

// Stats counts watcher activity.
type Stats struct {
	Events        int
	Ignored       int
	Runs          int
	Failures      int
	LastEventPath string
	LastRunAt     time.Time
}

// Watcher debounces vault changes into sequential pipeline runs. A run
// never starts while another one is in progress.
type Watcher struct {
	cfg    Config
	run    RunFunc
	logger interfaces.Logger
	now    func() time.Time
	ignore []string

	mu      sync.Mutex
	pending bool
	lastAt  time.Time
	stats   Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock overrides the time source used for debouncing.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

// New validates cfg and returns a watcher that calls run after changes.
func New(cfg Config, run RunFunc, opts ...Option) (*Watcher, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, errors.New("watch: root is required")
	}
	if run == nil {
		return nil, errors.New("watch: run function is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if strings.TrimSpace(cfg.Extension) == "" {
		cfg.Extension = defaultExtension
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root %s: %w", cfg.Root, err)
	}
	cfg.Root = root

	w := &Watcher{
		cfg:    cfg,
		run:    run,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, path := range cfg.Ignore {
		if strings.TrimSpace(path) == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve ignore %s: %w", path, err)
		}
		w.ignore = append(w.ignore, abs)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Relevant reports whether a change to path should schedule a run.
func (w *Watcher) Relevant(path string) bool {
	if !strings.HasSuffix(filepath.Base(path), w.cfg.Extension) {
		return false
	}
	return !w.ignored(path)
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	for _, ignore := range w.ignore {
		if abs == ignore || strings.HasPrefix(abs, ignore+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run watches the vault until ctx is cancelled. Run failures are logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.cfg.Root); err != nil {
		return err
	}
	w.logger.Info("watch.started", "root", w.cfg.Root, "debounce", w.cfg.Debounce)

	return w.loop(ctx, fw.Events, fw.Errors, func(dir string) {
		if err := w.addTree(fw, dir); err != nil {
			w.logger.Warn("watch.add_failed", "path", dir, "error", err)
		}
	})
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("watch: walk %s: %w", path, walkErr)
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, addDir func(string)) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch.stopped")
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			w.handleEvent(event, addDir)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.error", "error", err)

		case <-ticker.C:
			w.runIfSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, addDir func(string)) {
	if event.Has(fsnotify.Create) && addDir != nil && !w.ignored(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			addDir(event.Name)
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	if !w.Relevant(event.Name) {
		w.stats.Ignored++
		return
	}
	w.stats.LastEventPath = event.Name
	w.pending = true
	w.lastAt = w.now()
	w.logger.Debug("watch.change", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) runIfSettled(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || w.now().Sub(w.lastAt) < w.cfg.Debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	w.logger.Info("watch.run.triggered")
	err := w.run(ctx)

	w.mu.Lock()
	w.stats.Runs++
	w.stats.LastRunAt = w.now()
	if err != nil {
		w.stats.Failures++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("watch.run.failed", "error", err)
	}
}
