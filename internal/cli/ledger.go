package cli

import (
	"log/slog"

	"github.com/catrisk/runprep/internal/ledger"
	"github.com/catrisk/runprep/internal/settings"
)

// openLedger opens the configured run ledger, or nil when none is usable.
// A broken ledger never blocks the pipeline.
func openLedger(cfg *settings.Config) *ledger.Ledger {
	path := cfg.LedgerPath
	if path == "" {
		p, err := ledger.DefaultPath()
		if err != nil {
			slog.Warn("run ledger unavailable", "error", err)
			return nil
		}
		path = p
	}

	led, err := ledger.Open(path)
	if err != nil {
		slog.Warn("run ledger unavailable", "path", path, "error", err)
		return nil
	}
	return led
}

// recordStage journals a pipeline stage around fn. Ledger failures are
// logged and swallowed; fn's error is always returned unchanged.
func recordStage(cfg *settings.Config, runPath, stage string, fn func() error) error {
	led := openLedger(cfg)
	if led == nil {
		return fn()
	}
	defer func() { _ = led.Close() }()

	id, lerr := led.Begin(runPath, stage)
	if lerr != nil {
		slog.Warn("ledger write failed", "error", lerr)
	}

	err := fn()

	if lerr == nil {
		status, msg := ledger.StatusCompleted, ""
		if err != nil {
			status, msg = ledger.StatusFailed, err.Error()
		}
		if ferr := led.Finish(id, status, msg); ferr != nil {
			slog.Warn("ledger write failed", "error", ferr)
		}
	}
	return err
}
