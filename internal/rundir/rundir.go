// Package rundir builds and maintains the model run directory: the fixed
// fifo/input/output/static/work topology, its RI_<n> reinsurance layers,
// the shared static binaries and the pre-conversion input checks.
package rundir

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/catrisk/runprep/internal/archive"
	"github.com/catrisk/runprep/internal/fileset"
)

// runSubdirs are created under every run directory regardless of mode.
var runSubdirs = []string{"fifo", "output", "static", "work"}

// PrepareOptions configures PrepareRunDirectory. Only RunPath is required.
type PrepareOptions struct {
	RunPath              string
	SourceFilesPath      string // directory of source CSVs (and RI_<n> trees) to copy in
	AnalysisSettingsPath string // copied to <run>/analysis_settings.json
	ModelDataPath        string // entries linked (or copied) into <run>/static
	InputsArchivePath    string // pre-built inputs archive expanded instead of creating input/csv
	Reinsurance          bool
}

// PrepareRunDirectory ensures the run directory has the topology the
// numerical engine expects and stages the supplied source files into it.
// Pre-existing subdirectories are not an error. On failure the run
// directory must be treated as unusable; completed steps are not rolled
// back.
func PrepareRunDirectory(opts PrepareOptions) error {
	for _, sub := range runSubdirs {
		dir := filepath.Join(opts.RunPath, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	dest := inputDestination(opts.RunPath, opts.Reinsurance)

	if opts.InputsArchivePath != "" {
		if err := archive.ExtractInputs(opts.InputsArchivePath, opts.RunPath); err != nil {
			return err
		}
	} else if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if opts.SourceFilesPath != "" {
		same, err := samePath(opts.SourceFilesPath, dest)
		if err != nil {
			return err
		}
		if !same {
			if err := copySourceFiles(opts.SourceFilesPath, opts.RunPath, dest); err != nil {
				return err
			}
		}
	}

	if opts.AnalysisSettingsPath != "" {
		dst := filepath.Join(opts.RunPath, "analysis_settings.json")
		if err := copyFile(opts.AnalysisSettingsPath, dst); err != nil {
			return err
		}
	}

	if opts.ModelDataPath != "" {
		if err := stageModelData(opts.ModelDataPath, filepath.Join(opts.RunPath, "static")); err != nil {
			return err
		}
	}

	return nil
}

// inputDestination is where source CSVs land: input/csv for a plain run,
// input itself when the run carries reinsurance layers.
func inputDestination(runPath string, reinsurance bool) string {
	if reinsurance {
		return filepath.Join(runPath, "input")
	}
	return filepath.Join(runPath, "input", "csv")
}

// copySourceFiles stages a source-file directory into the run: RI_<n>
// subtrees and ri_layers.json go to the run root, everything else to the
// computed input destination.
func copySourceFiles(srcDir, runPath, dest string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", srcDir, err)
	}

	for _, e := range entries {
		src := filepath.Join(srcDir, e.Name())
		switch {
		case e.IsDir() && fileset.IsRILayer(e.Name()):
			if err := copyDir(src, filepath.Join(runPath, e.Name())); err != nil {
				return err
			}
		case e.Name() == "ri_layers.json":
			if err := copyFile(src, filepath.Join(runPath, e.Name())); err != nil {
				return err
			}
		default:
			if err := copyFile(src, filepath.Join(dest, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// stageModelData makes every top-level model data entry available under the
// static directory: symlinked where the filesystem allows it, recursively
// copied otherwise.
func stageModelData(srcDir, staticDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", srcDir, err)
	}

	for _, e := range entries {
		src := filepath.Join(srcDir, e.Name())
		dst := filepath.Join(staticDir, e.Name())

		err := os.Symlink(src, dst)
		if err == nil {
			continue
		}
		slog.Debug("symlink unavailable, copying model data", "src", src, "error", err)

		if e.IsDir() {
			err = copyDir(src, dst)
		} else {
			err = copyFile(src, dst)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", b, err)
	}
	return absA == absB, nil
}

// copyFile copies a single file preserving its mode and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// copyDir recursively copies a directory tree.
func copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", src, err)
	}
	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())
		dstPath := filepath.Join(dst, e.Name())
		if e.IsDir() {
			err = copyDir(srcPath, dstPath)
		} else {
			err = copyFile(srcPath, dstPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
