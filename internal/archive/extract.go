package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/catrisk/runprep/internal/fileset"
)

// ExtractInputs expands a packaged inputs archive into runPath/input, then
// relocates any top-level RI_<n> member to be a direct sibling of input,
// restoring the layered run layout.
func ExtractInputs(archivePath, runPath string) error {
	inputDir := filepath.Join(runPath, "input")
	if err := extractTarGz(archivePath, inputDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", inputDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() || !fileset.IsRILayer(e.Name()) {
			continue
		}
		src := filepath.Join(inputDir, e.Name())
		dst := filepath.Join(runPath, e.Name())
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("relocate reinsurance layer %s: %w", e.Name(), err)
		}
		slog.Debug("relocated reinsurance layer", "layer", e.Name(), "dst", dst)
	}
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read archive %s: %w", archivePath, err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", archivePath, err)
		}

		rel := path.Clean(hdr.Name)
		if rel == "." {
			continue
		}
		if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
			return fmt.Errorf("archive %s has unsafe member path %q", archivePath, hdr.Name)
		}
		target := filepath.Join(destDir, filepath.FromSlash(rel))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeMember(tr, target, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			slog.Debug("skipping archive member", "member", hdr.Name, "type", hdr.Typeflag)
		}
	}
}

func writeMember(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("extract %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("extract %s: %w", target, err)
	}
	return nil
}
