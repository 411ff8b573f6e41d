package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/catrisk/runprep/internal/fileset"
)

// installTool writes an executable shell script onto a directory that the
// test prepends to PATH.
func installTool(t *testing.T, binDir, name, script string) {
	t.Helper()
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(binDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func coreRegistry(tool string) *fileset.Registry {
	return fileset.NewRegistry([]fileset.Input{
		{Name: "loc", Category: fileset.CategoryCore, Tool: tool},
		{Name: "acc", Category: fileset.CategoryCore, Tool: tool},
		{Name: "cov", Category: fileset.CategoryCore, Tool: tool},
	})
}

func TestCheckTools(t *testing.T) {
	tools := filepath.Join(t.TempDir(), "tools")
	installTool(t, tools, "loctobin", "cat")

	reg := fileset.NewRegistry([]fileset.Input{
		{Name: "loc", Category: fileset.CategoryCore, Tool: "loctobin"},
		{Name: "fm", Category: fileset.CategoryIL, Tool: "runprep-test-no-such-tool"},
	})

	if err := CheckTools(reg, false); err != nil {
		t.Errorf("core tools should resolve: %v", err)
	}

	err := CheckTools(reg, true)
	var missing *MissingToolError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingToolError, got %v", err)
	}
	if missing.Tool != "runprep-test-no-such-tool" {
		t.Errorf("missing tool = %q", missing.Tool)
	}
}

func TestCreateBinaryFiles_SkipsAbsentCSVs(t *testing.T) {
	tools := filepath.Join(t.TempDir(), "tools")
	installTool(t, tools, "csvtobin", "cat")

	csvDir := t.TempDir()
	binDir := t.TempDir()
	writeFile(t, filepath.Join(csvDir, "loc.csv"), "loc data")
	writeFile(t, filepath.Join(csvDir, "acc.csv"), "acc data")
	// cov.csv deliberately absent.

	err := CreateBinaryFiles(context.Background(), coreRegistry("csvtobin"), csvDir, binDir, Options{})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(binDir, "loc.bin"))
	if err != nil || string(data) != "loc data" {
		t.Errorf("loc.bin not produced from stdin/stdout: %v", err)
	}
	if _, err := os.Stat(filepath.Join(binDir, "acc.bin")); err != nil {
		t.Errorf("acc.bin not produced: %v", err)
	}
	if _, err := os.Stat(filepath.Join(binDir, "cov.bin")); !os.IsNotExist(err) {
		t.Error("cov.bin produced without a source CSV")
	}
}

func TestCreateBinaryFiles_RILayersImplyIL(t *testing.T) {
	tools := filepath.Join(t.TempDir(), "tools")
	installTool(t, tools, "csvtobin", "cat")
	installTool(t, tools, "fmtobin", "cat")

	reg := fileset.NewRegistry([]fileset.Input{
		{Name: "items", Category: fileset.CategoryCore, Tool: "csvtobin"},
		{Name: "fm_xref", Category: fileset.CategoryIL, Tool: "fmtobin"},
	})

	csvDir := t.TempDir()
	binDir := t.TempDir()
	writeFile(t, filepath.Join(csvDir, "items.csv"), "base items")
	writeFile(t, filepath.Join(csvDir, "fm_xref.csv"), "base fm")
	writeFile(t, filepath.Join(csvDir, "RI_1", "items.csv"), "ri items")
	writeFile(t, filepath.Join(csvDir, "RI_1", "fm_xref.csv"), "ri fm")
	writeFile(t, filepath.Join(csvDir, "notalayer", "items.csv"), "ignored")

	// IncludeIL left false: IncludeRI must force it.
	err := CreateBinaryFiles(context.Background(), reg, csvDir, binDir, Options{IncludeRI: true})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	for _, rel := range []string{"items.bin", "fm_xref.bin", "RI_1/items.bin", "RI_1/fm_xref.bin"} {
		if _, err := os.Stat(filepath.Join(binDir, rel)); err != nil {
			t.Errorf("%s not produced: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(binDir, "notalayer")); !os.IsNotExist(err) {
		t.Error("non-RI subdirectory was converted")
	}
}

func TestCreateBinaryFiles_ToolFailureCarriesOutput(t *testing.T) {
	tools := filepath.Join(t.TempDir(), "tools")
	installTool(t, tools, "badtobin", `echo "malformed row 3" >&2; exit 1`)

	reg := fileset.NewRegistry([]fileset.Input{
		{Name: "loc", Category: fileset.CategoryCore, Tool: "badtobin"},
	})

	csvDir := t.TempDir()
	writeFile(t, filepath.Join(csvDir, "loc.csv"), "x")

	err := CreateBinaryFiles(context.Background(), reg, csvDir, t.TempDir(), Options{})
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if convErr.Tool != "badtobin" {
		t.Errorf("tool = %q", convErr.Tool)
	}
	if !strings.Contains(convErr.Output, "malformed row 3") {
		t.Errorf("captured output missing diagnostics: %q", convErr.Output)
	}
}

func TestCreateBinaryFiles_Timeout(t *testing.T) {
	tools := filepath.Join(t.TempDir(), "tools")
	installTool(t, tools, "slowtobin", "sleep 10")

	reg := fileset.NewRegistry([]fileset.Input{
		{Name: "loc", Category: fileset.CategoryCore, Tool: "slowtobin"},
	})

	csvDir := t.TempDir()
	writeFile(t, filepath.Join(csvDir, "loc.csv"), "x")

	start := time.Now()
	err := CreateBinaryFiles(context.Background(), reg, csvDir, t.TempDir(), Options{
		ToolTimeout: 200 * time.Millisecond,
	})
	var toErr *ToolTimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("expected ToolTimeoutError, got %v", err)
	}
	if toErr.Tool != "slowtobin" {
		t.Errorf("tool = %q", toErr.Tool)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout did not kill the tool promptly")
	}
}
