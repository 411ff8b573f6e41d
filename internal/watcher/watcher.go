package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/catrisk/runprep/internal/fileset"
)

// debounceDefault is the debounce interval between a file event and a rescan.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the polling interval when fsnotify is unavailable.
const pollDefault = 2 * time.Second

// Config holds watcher configuration.
type Config struct {
	Dir          string
	Registry     *fileset.Registry
	IncludeIL    bool
	IncludeRI    bool
	Poll         bool          // use polling instead of fsnotify
	Debounce     time.Duration // default 200ms
	PollInterval time.Duration // default 2s
	OnResult     func(Result)  // invoked for the initial scan and every change
}

// Watch scans cfg.Dir once, then re-scans on every change until ctx is
// cancelled. OnResult fires for the initial scan and whenever the scan
// outcome differs from the previous one.
func Watch(ctx context.Context, cfg Config) error {
	if cfg.Dir == "" {
		return fmt.Errorf("watch directory is required")
	}
	if cfg.Registry == nil {
		cfg.Registry = fileset.Default()
	}
	if cfg.OnResult == nil {
		return fmt.Errorf("result callback is required")
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = debounceDefault
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = pollDefault
	}

	last := Scan(cfg.Registry, cfg.Dir, cfg.IncludeIL, cfg.IncludeRI)
	cfg.OnResult(last)

	if cfg.Poll {
		return pollLoop(ctx, cfg, last)
	}
	return fsLoop(ctx, cfg, last)
}

func fsLoop(ctx context.Context, cfg Config, last Result) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}
	addLayerWatches(w, cfg.Dir, cfg.IncludeRI)

	slog.Info("watching inputs", "mode", "fsnotify", "dir", cfg.Dir)

	var debounce *time.Timer
	rescan := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case <-rescan:
			addLayerWatches(w, cfg.Dir, cfg.IncludeRI)
			res := Scan(cfg.Registry, cfg.Dir, cfg.IncludeIL, cfg.IncludeRI)
			if !sameOutcome(last, res) {
				last = res
				cfg.OnResult(res)
			}

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(cfg.Debounce, func() {
				select {
				case rescan <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// addLayerWatches registers existing RI_<n> subdirectories with the watcher
// so layer-internal changes are seen too. Re-adding a watched directory is
// harmless.
func addLayerWatches(w *fsnotify.Watcher, dir string, includeRI bool) {
	if !includeRI {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || !fileset.IsRILayer(e.Name()) {
			continue
		}
		if err := w.Add(filepath.Join(dir, e.Name())); err != nil {
			slog.Debug("cannot watch layer", "layer", e.Name(), "error", err)
		}
	}
}

func pollLoop(ctx context.Context, cfg Config, last Result) error {
	slog.Info("watching inputs", "mode", "poll", "dir", cfg.Dir, "interval", cfg.PollInterval)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res := Scan(cfg.Registry, cfg.Dir, cfg.IncludeIL, cfg.IncludeRI)
			if !sameOutcome(last, res) {
				last = res
				cfg.OnResult(res)
			}
		}
	}
}

// sameOutcome ignores the timestamp so unchanged directories stay quiet.
func sameOutcome(a, b Result) bool {
	return a.Dir == b.Dir &&
		reflect.DeepEqual(a.Layers, b.Layers) &&
		(a.Err == nil) == (b.Err == nil)
}
