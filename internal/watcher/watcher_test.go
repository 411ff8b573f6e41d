package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/catrisk/runprep/internal/fileset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testRegistry() *fileset.Registry {
	return fileset.NewRegistry([]fileset.Input{
		{Name: "items", Category: fileset.CategoryCore, Tool: "itemtobin"},
		{Name: "fm_xref", Category: fileset.CategoryIL, Tool: "fmxreftobin"},
	})
}

func TestScan_BaseLayer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "items.csv"), "x")
	writeFile(t, filepath.Join(dir, "items.bin"), "stale")

	res := Scan(testRegistry(), dir, false, false)
	if len(res.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(res.Layers))
	}

	base := res.Layers[0]
	if base.Layer != "input" {
		t.Errorf("base layer label = %q", base.Layer)
	}
	if len(base.Missing) != 0 {
		t.Errorf("unexpected missing files: %v", base.Missing)
	}
	if len(base.Stale) != 1 || base.Stale[0] != "items.bin" {
		t.Errorf("stale = %v, want [items.bin]", base.Stale)
	}
	if res.Clean() {
		t.Error("result with stale binary reported clean")
	}
}

func TestScan_RILayers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "items.csv"), "x")
	writeFile(t, filepath.Join(dir, "RI_1", "items.csv"), "x")
	writeFile(t, filepath.Join(dir, "RI_1", "fm_xref.csv"), "x")
	writeFile(t, filepath.Join(dir, "RI_2", "items.csv"), "x")

	res := Scan(testRegistry(), dir, false, true)
	if len(res.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d: %+v", len(res.Layers), res.Layers)
	}

	byName := make(map[string]LayerStatus)
	for _, l := range res.Layers {
		byName[l.Layer] = l
	}
	if !byName["RI_1"].Clean() {
		t.Errorf("RI_1 should be clean: %+v", byName["RI_1"])
	}
	// IL files are always required inside a layer.
	if got := byName["RI_2"].Missing; len(got) != 1 || got[0] != "fm_xref.csv" {
		t.Errorf("RI_2 missing = %v, want [fm_xref.csv]", got)
	}
}

func TestWatch_PollDetectsChange(t *testing.T) {
	dir := t.TempDir()

	results := make(chan Result, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{
			Dir:          dir,
			Registry:     testRegistry(),
			Poll:         true,
			PollInterval: 20 * time.Millisecond,
			OnResult:     func(r Result) { results <- r },
		})
	}()

	// Initial scan: items.csv missing.
	select {
	case r := <-results:
		if len(r.Layers[0].Missing) != 1 {
			t.Errorf("initial scan missing = %v", r.Layers[0].Missing)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial scan")
	}

	writeFile(t, filepath.Join(dir, "items.csv"), "x")

	select {
	case r := <-results:
		if !r.Clean() {
			t.Errorf("expected clean result after creating items.csv: %+v", r.Layers)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change not detected")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned error: %v", err)
	}
}

func TestWatch_FSNotifyDetectsChange(t *testing.T) {
	dir := t.TempDir()

	results := make(chan Result, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{
			Dir:      dir,
			Registry: testRegistry(),
			Debounce: 20 * time.Millisecond,
			OnResult: func(r Result) { results <- r },
		})
	}()

	select {
	case <-results: // initial scan
	case <-time.After(2 * time.Second):
		t.Fatal("no initial scan")
	}

	writeFile(t, filepath.Join(dir, "items.csv"), "x")

	select {
	case r := <-results:
		if !r.Clean() {
			t.Errorf("expected clean result: %+v", r.Layers)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fsnotify change not detected")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned error: %v", err)
	}
}
