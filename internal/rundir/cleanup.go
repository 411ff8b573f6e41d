package rundir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/catrisk/runprep/internal/fileset"
)

// CleanupBinDirectory removes the packaged archive and every registry
// binary from dir, restoring it to its pre-conversion state. Absent targets
// are skipped; the operation is idempotent.
func CleanupBinDirectory(reg *fileset.Registry, dir string) error {
	targets := []string{fileset.TarFile}
	for _, in := range reg.All() {
		targets = append(targets, in.BinName())
	}

	for _, name := range targets {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}
