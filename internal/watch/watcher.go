// Package watch re-exports the vault whenever its files change. File events
// are debounced so one editor save burst triggers one export; an optional
// fixed interval additionally schedules full re-exports.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/solvang/webvault/internal/logfields"
)

// ExportFunc runs one export; the watcher triggers it after each quiet
// period. Errors are logged, the watch continues.
type ExportFunc func(ctx context.Context) error

// Watcher monitors a vault directory tree.
type Watcher struct {
	root      string
	debounce  time.Duration
	interval  time.Duration // zero disables interval scheduling
	export    ExportFunc
	fswatcher *fsnotify.Watcher
	scheduler gocron.Scheduler
	trigger   chan struct{}
}

// New creates a watcher over the vault root. debounce is the quiet period
// after the last event; interval, when non-zero, schedules additional full
// re-exports at a fixed period.
func New(root string, debounce, interval time.Duration, export ExportFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}

	w := &Watcher{
		root:      abs,
		debounce:  debounce,
		interval:  interval,
		export:    export,
		fswatcher: fsw,
		trigger:   make(chan struct{}, 1),
	}

	if interval > 0 {
		sched, err := gocron.NewScheduler()
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		if _, err := sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(w.fire),
			gocron.WithName("interval-export"),
		); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("schedule interval export: %w", err)
		}
		w.scheduler = sched
	}

	return w, nil
}

// Run watches until ctx is canceled. An initial export runs immediately so
// the destination reflects the vault before the first change arrives.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	if w.scheduler != nil {
		w.scheduler.Start()
		defer func() { _ = w.scheduler.Shutdown() }()
	}
	defer w.fswatcher.Close()

	slog.Info("Watching vault", slog.String("root", w.root),
		slog.Duration("debounce", w.debounce))

	w.runExport(ctx)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fswatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Warn("New directory not watched", logfields.Error(err))
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fswatcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			w.runExport(ctx)

		case <-w.trigger:
			w.runExport(ctx)
		}
	}
}

// fire is called by the interval scheduler from its own goroutine; it only
// nudges the single watch loop so exports never run concurrently.
func (w *Watcher) fire() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Watcher) runExport(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := w.export(ctx); err != nil {
		slog.Error("Export failed", logfields.Error(err))
		return
	}
	slog.Info("Export triggered by watch",
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// relevant filters out events for hidden files and editor temp artifacts.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return false
	}
	return true
}

// addRecursive watches a directory and every subdirectory, skipping hidden
// ones. fsnotify does not watch trees by itself.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		if err := w.fswatcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
