package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/catrisk/runprep/internal/ledger"
	"github.com/catrisk/runprep/internal/watcher"
)

func TestFormatScan(t *testing.T) {
	res := watcher.Result{
		Dir:       "/runs/alpha/input",
		CheckedAt: time.Now(),
		Layers: []watcher.LayerStatus{
			{Layer: "input"},
			{Layer: "RI_1", Missing: []string{"items.csv"}, Stale: []string{"coverages.bin"}},
		},
	}

	out := FormatScan(res)
	if !strings.Contains(out, "/runs/alpha/input") {
		t.Errorf("directory missing from output: %q", out)
	}
	if !strings.Contains(out, "ok") {
		t.Errorf("clean layer not marked ok: %q", out)
	}
	if !strings.Contains(out, "items.csv") || !strings.Contains(out, "coverages.bin") {
		t.Errorf("problem files missing from output: %q", out)
	}
}

func TestFormatRuns(t *testing.T) {
	now := time.Now()
	entries := []ledger.Entry{
		{RunPath: "/runs/beta", Stage: "convert", Status: ledger.StatusFailed,
			Error: "itemtobin failed", StartedAt: now.Add(-time.Minute), FinishedAt: now},
		{RunPath: "/runs/alpha", Stage: "prepare", Status: ledger.StatusCompleted,
			StartedAt: now.Add(-2 * time.Minute), FinishedAt: now.Add(-time.Minute)},
	}

	out := FormatRuns(entries)
	for _, want := range []string{"convert", "prepare", "/runs/beta", "itemtobin failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestFormatRuns_Empty(t *testing.T) {
	if out := FormatRuns(nil); !strings.Contains(out, "no recorded runs") {
		t.Errorf("unexpected empty output: %q", out)
	}
}
