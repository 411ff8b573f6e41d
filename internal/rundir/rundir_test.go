package rundir

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/catrisk/runprep/internal/archive"
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

func topLevelNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestPrepareRunDirectory_PlainTopology(t *testing.T) {
	runPath := filepath.Join(t.TempDir(), "run")

	if err := PrepareRunDirectory(PrepareOptions{RunPath: runPath}); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	got := topLevelNames(t, runPath)
	want := []string{"fifo", "input", "output", "static", "work"}
	if len(got) != len(want) {
		t.Fatalf("top-level entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("top-level entries = %v, want %v", got, want)
		}
	}

	if info, err := os.Stat(filepath.Join(runPath, "input", "csv")); err != nil || !info.IsDir() {
		t.Errorf("input/csv missing: %v", err)
	}
}

func TestPrepareRunDirectory_Idempotent(t *testing.T) {
	runPath := filepath.Join(t.TempDir(), "run")
	for i := 0; i < 2; i++ {
		if err := PrepareRunDirectory(PrepareOptions{RunPath: runPath}); err != nil {
			t.Fatalf("prepare pass %d: %v", i+1, err)
		}
	}
}

func TestPrepareRunDirectory_ReinsuranceSourceCopy(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "items.csv"), "items")
	writeFile(t, filepath.Join(src, "coverages.csv"), "coverages")
	writeFile(t, filepath.Join(src, "ri_layers.json"), "{}")
	writeFile(t, filepath.Join(src, "RI_1", "items.csv"), "ri1 items")
	writeFile(t, filepath.Join(src, "RI_2", "items.csv"), "ri2 items")

	runPath := filepath.Join(t.TempDir(), "run")
	err := PrepareRunDirectory(PrepareOptions{
		RunPath:         runPath,
		SourceFilesPath: src,
		Reinsurance:     true,
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	// Base CSVs land directly under input in RI mode.
	if _, err := os.Stat(filepath.Join(runPath, "input", "items.csv")); err != nil {
		t.Errorf("items.csv not copied into input: %v", err)
	}

	// RI layers are siblings of input, never nested under it.
	for _, layer := range []string{"RI_1", "RI_2"} {
		if _, err := os.Stat(filepath.Join(runPath, layer, "items.csv")); err != nil {
			t.Errorf("layer %s not copied to run root: %v", layer, err)
		}
		if _, err := os.Stat(filepath.Join(runPath, "input", layer)); !os.IsNotExist(err) {
			t.Errorf("layer %s nested under input", layer)
		}
	}

	if _, err := os.Stat(filepath.Join(runPath, "ri_layers.json")); err != nil {
		t.Errorf("ri_layers.json not copied to run root: %v", err)
	}
}

func TestPrepareRunDirectory_AnalysisSettingsCopy(t *testing.T) {
	srcSettings := filepath.Join(t.TempDir(), "my_settings.json")
	writeFile(t, srcSettings, `{"model_settings":{}}`)

	runPath := filepath.Join(t.TempDir(), "run")
	err := PrepareRunDirectory(PrepareOptions{
		RunPath:              runPath,
		AnalysisSettingsPath: srcSettings,
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(runPath, "analysis_settings.json"))
	if err != nil {
		t.Fatalf("analysis_settings.json not copied: %v", err)
	}
	if string(data) != `{"model_settings":{}}` {
		t.Errorf("unexpected settings content: %s", data)
	}
}

func TestPrepareRunDirectory_ModelDataStaged(t *testing.T) {
	modelData := t.TempDir()
	writeFile(t, filepath.Join(modelData, "events.bin"), "events")
	writeFile(t, filepath.Join(modelData, "footprints", "fp.bin"), "fp")

	runPath := filepath.Join(t.TempDir(), "run")
	err := PrepareRunDirectory(PrepareOptions{
		RunPath:       runPath,
		ModelDataPath: modelData,
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	// Entries must be reachable under static, via link or copy.
	data, err := os.ReadFile(filepath.Join(runPath, "static", "events.bin"))
	if err != nil || string(data) != "events" {
		t.Errorf("static/events.bin unreadable: %v", err)
	}
	data, err = os.ReadFile(filepath.Join(runPath, "static", "footprints", "fp.bin"))
	if err != nil || string(data) != "fp" {
		t.Errorf("static/footprints/fp.bin unreadable: %v", err)
	}
}

func TestPrepareRunDirectory_FromArchiveRoundTrip(t *testing.T) {
	// Package a layered binary set, then prepare a fresh run from it.
	binDir := t.TempDir()
	writeFile(t, filepath.Join(binDir, "items.bin"), "base")
	writeFile(t, filepath.Join(binDir, "RI_1", "items.bin"), "layer")
	if err := archive.CreateBinaryTarFile(binDir); err != nil {
		t.Fatalf("pack: %v", err)
	}

	runPath := filepath.Join(t.TempDir(), "run")
	err := PrepareRunDirectory(PrepareOptions{
		RunPath:           runPath,
		InputsArchivePath: filepath.Join(binDir, fileset.TarFile),
		Reinsurance:       true,
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if _, err := os.Stat(filepath.Join(runPath, "input", "items.bin")); err != nil {
		t.Errorf("base binary missing after expansion: %v", err)
	}
	if _, err := os.Stat(filepath.Join(runPath, "RI_1", "items.bin")); err != nil {
		t.Errorf("RI_1 binary missing after expansion: %v", err)
	}
	if _, err := os.Stat(filepath.Join(runPath, "input", "RI_1")); !os.IsNotExist(err) {
		t.Error("RI_1 left nested under input")
	}
}
