// Package archive packages run-directory binaries as gzip-compressed tar
// files and expands input archives back into the layered run layout.
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
	"sort"
	"strings"

	"github.com/catrisk/runprep/internal/fileset"
)

// MissingMemberError reports a required binary absent from an archive.
type MissingMemberError struct {
	Member  string
	Archive string
}

func (e *MissingMemberError) Error() string {
	return fmt.Sprintf("%s is missing from the tar file %s", e.Member, e.Archive)
}

// CreateBinaryTarFile packages a directory's binaries into inputs.tar.gz
// inside that directory. Members are every *.bin directly under the
// directory plus every *.bin one subdirectory below it (the RI layers),
// stored under their directory-relative POSIX paths.
func CreateBinaryTarFile(directory string) error {
	members, err := collectBinaries(directory)
	if err != nil {
		return err
	}

	tarPath := filepath.Join(directory, fileset.TarFile)
	f, err := os.Create(tarPath)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", tarPath, err)
	}
	defer func() { _ = f.Close() }()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for _, rel := range members {
		if err := addMember(tw, directory, rel); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalize archive %s: %w", tarPath, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize archive %s: %w", tarPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("finalize archive %s: %w", tarPath, err)
	}
	return nil
}

// collectBinaries lists *.bin files at depth one and two under dir, as
// slash-separated relative paths in deterministic order.
func collectBinaries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var members []string
	for _, e := range entries {
		if !e.IsDir() {
			if strings.HasSuffix(e.Name(), ".bin") {
				members = append(members, e.Name())
			}
			continue
		}
		sub, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", filepath.Join(dir, e.Name()), err)
		}
		for _, se := range sub {
			if !se.IsDir() && strings.HasSuffix(se.Name(), ".bin") {
				members = append(members, e.Name()+"/"+se.Name())
			}
		}
	}
	sort.Strings(members)
	return members, nil
}

func addMember(tw *tar.Writer, dir, rel string) error {
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat %s: %w", abs, err)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("archive header for %s: %w", abs, err)
	}
	hdr.Name = rel

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write archive header for %s: %w", rel, err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("open %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archive %s: %w", rel, err)
	}

	slog.Debug("archived binary", "member", rel)
	return nil
}

// CheckBinaryTarFile verifies that the archive at tarPath contains every
// required base-layer binary: the core set, plus the insured-loss set when
// includeIL is set. RI-layer members are not cross-checked.
func CheckBinaryTarFile(tarPath string, reg *fileset.Registry, includeIL bool) error {
	f, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", tarPath, err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read archive %s: %w", tarPath, err)
	}
	defer func() { _ = gz.Close() }()

	members := make(map[string]struct{})
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", tarPath, err)
		}
		members[path.Clean(hdr.Name)] = struct{}{}
	}

	for _, in := range reg.Required(includeIL) {
		if _, ok := members[in.BinName()]; !ok {
			return &MissingMemberError{Member: in.BinName(), Archive: tarPath}
		}
	}
	return nil
}
