package rundir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/catrisk/runprep/internal/fileset"
)

// CheckOptions configures CheckInputsDirectory.
type CheckOptions struct {
	IncludeIL           bool
	IncludeRI           bool
	CheckBinariesAbsent bool
}

// CheckInputsDirectory verifies that every required CSV of the active file
// set exists in dir, failing on the first missing file. With
// CheckBinariesAbsent it also fails on the first binary already present
// beside its CSV. With IncludeRI the full check repeats, always with the
// insured-loss set, for every RI_<n> subdirectory.
func CheckInputsDirectory(reg *fileset.Registry, dir string, opts CheckOptions) error {
	if err := checkOneDirectory(reg, dir, opts.IncludeIL, opts.CheckBinariesAbsent); err != nil {
		return err
	}

	if !opts.IncludeRI {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() || !fileset.IsRILayer(e.Name()) {
			continue
		}
		layerDir := filepath.Join(dir, e.Name())
		if err := checkOneDirectory(reg, layerDir, true, opts.CheckBinariesAbsent); err != nil {
			return err
		}
	}
	return nil
}

func checkOneDirectory(reg *fileset.Registry, dir string, includeIL, checkBinaries bool) error {
	for _, in := range reg.Required(includeIL) {
		csvPath := filepath.Join(dir, in.CSVName())
		if _, err := os.Stat(csvPath); err != nil {
			return &MissingFileError{Path: csvPath}
		}

		if checkBinaries {
			binPath := filepath.Join(dir, in.BinName())
			if _, err := os.Stat(binPath); err == nil {
				return &StaleBinaryError{Path: binPath}
			}
		}
	}
	return nil
}
