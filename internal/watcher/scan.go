// Package watcher re-validates a CSV input directory whenever its contents
// change, so missing or stale files surface before a pipeline run.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/catrisk/runprep/internal/fileset"
)

// LayerStatus summarizes one input layer: the base directory or one RI_<n>.
type LayerStatus struct {
	Layer   string   // "input" for the base layer, else the RI_<n> name
	Missing []string // required CSVs not present
	Stale   []string // binaries already present beside their CSVs
}

// Clean reports whether the layer has everything it needs and no leftovers.
func (l LayerStatus) Clean() bool {
	return len(l.Missing) == 0 && len(l.Stale) == 0
}

// Result is one full scan of a layered input directory.
type Result struct {
	Dir       string
	CheckedAt time.Time
	Layers    []LayerStatus
	Err       error // directory-level read failure
}

// Clean reports whether every layer scanned clean.
func (r Result) Clean() bool {
	if r.Err != nil {
		return false
	}
	for _, l := range r.Layers {
		if !l.Clean() {
			return false
		}
	}
	return true
}

// Scan inspects dir (and, with includeRI, its RI_<n> subdirectories) and
// reports per layer which required CSVs are missing and which binaries are
// already present.
func Scan(reg *fileset.Registry, dir string, includeIL, includeRI bool) Result {
	res := Result{Dir: dir, CheckedAt: time.Now()}
	res.Layers = append(res.Layers, scanLayer(reg, dir, "input", includeIL))

	if !includeRI {
		return res
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		res.Err = fmt.Errorf("read directory %s: %w", dir, err)
		return res
	}
	for _, e := range entries {
		if !e.IsDir() || !fileset.IsRILayer(e.Name()) {
			continue
		}
		res.Layers = append(res.Layers, scanLayer(reg, filepath.Join(dir, e.Name()), e.Name(), true))
	}
	return res
}

func scanLayer(reg *fileset.Registry, dir, label string, includeIL bool) LayerStatus {
	st := LayerStatus{Layer: label}
	for _, in := range reg.Required(includeIL) {
		if _, err := os.Stat(filepath.Join(dir, in.CSVName())); err != nil {
			st.Missing = append(st.Missing, in.CSVName())
		}
		if _, err := os.Stat(filepath.Join(dir, in.BinName())); err == nil {
			st.Stale = append(st.Stale, in.BinName())
		}
	}
	return st
}
