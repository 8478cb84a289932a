// Package watch re-runs a batch whenever the repository list file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the debounce interval for file events.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the polling interval when fsnotify is unavailable.
const pollDefault = 5 * time.Second

// Config holds watcher configuration.
type Config struct {
	Path         string        // repository list file
	PollMode     bool          // use polling instead of fsnotify
	Debounce     time.Duration // quiet period before a change triggers a run
	PollInterval time.Duration
	OnChange     func(ctx context.Context) error // runs one batch
}

// Watcher runs OnChange once at start and again after every change of Path.
// Runs never overlap; changes seen during a run schedule one more run.
type Watcher struct {
	cfg     Config
	trigger chan struct{}
}

// New creates a watcher with validated configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change handler is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = debounceDefault
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = pollDefault
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	cfg.Path = abs
	return &Watcher{cfg: cfg, trigger: make(chan struct{}, 1)}, nil
}

// Run blocks until ctx is cancelled. Errors from OnChange are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.cfg.Path); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Path, err)
	}

	// the baseline and the directory watch are taken before the first run so
	// edits made while it executes are seen
	stop := make(chan struct{})
	errc := make(chan error, 1)
	if w.cfg.PollMode {
		last := fingerprint(w.cfg.Path)
		go func() { errc <- w.poll(ctx, stop, last) }()
	} else {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := watcher.Add(filepath.Dir(w.cfg.Path)); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watch dir: %w", err)
		}
		go func() { errc <- w.notify(ctx, stop, watcher) }()
	}
	defer close(stop)

	w.schedule()
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case err := <-errc:
			return err
		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	slog.Info("running batch", "list", w.cfg.Path)
	if err := w.cfg.OnChange(ctx); err != nil {
		slog.Error("batch failed", "error", err)
	}
}

// schedule requests a run; requests made while one is pending coalesce.
func (w *Watcher) schedule() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// notify consumes events for the parent directory so editors that replace
// the file by rename are still seen.
func (w *Watcher) notify(ctx context.Context, stop <-chan struct{}, watcher *fsnotify.Watcher) error {
	defer func() { _ = watcher.Close() }()

	slog.Info("watching repository list", "mode", "fsnotify", "file", w.cfg.Path)

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.cfg.Path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(w.cfg.Debounce, w.schedule)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// poll compares modification time and size against last on every tick.
func (w *Watcher) poll(ctx context.Context, stop <-chan struct{}, last stamp) error {
	slog.Info("watching repository list", "mode", "poll", "file", w.cfg.Path, "interval", w.cfg.PollInterval)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case <-ticker.C:
			cur := fingerprint(w.cfg.Path)
			if cur != last {
				last = cur
				w.schedule()
			}
		}
	}
}

type stamp struct {
	mod  time.Time
	size int64
}

func fingerprint(path string) stamp {
	fi, err := os.Stat(path)
	if err != nil {
		return stamp{}
	}
	return stamp{mod: fi.ModTime(), size: fi.Size()}
}
