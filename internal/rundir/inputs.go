package rundir

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/catrisk/runprep/internal/settings"
)

// PrepareRunInputs copies the shared static binaries a run needs from the
// static pool into the run's input directory. For each role the expected
// pool file is static/<role>.bin, or static/<role>_<value>.bin when the
// corresponding model setting selects a variant. Roles already present
// under input/ are left alone. The periods role is attempted only when
// static/periods.bin exists.
func PrepareRunInputs(s *settings.AnalysisSettings, runPath string) error {
	var ms settings.ModelSettings
	if s != nil {
		ms = s.ModelSettings
	}

	if err := prepareStaticBin(runPath, "events", ms.EventSet); err != nil {
		return err
	}
	if err := prepareStaticBin(runPath, "returnperiods", ""); err != nil {
		return err
	}
	if err := prepareStaticBin(runPath, "occurrence", ms.EventOccurrenceID); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(runPath, "static", "periods.bin")); err == nil {
		if err := prepareStaticBin(runPath, "periods", ""); err != nil {
			return err
		}
	}
	return nil
}

func prepareStaticBin(runPath, role, settingVal string) error {
	dst := filepath.Join(runPath, "input", role+".bin")
	if _, err := os.Stat(dst); err == nil {
		slog.Debug("static binary already staged", "role", role, "path", dst)
		return nil
	}

	name := role + ".bin"
	if settingVal != "" {
		name = role + "_" + settings.NormalizeDataSuffix(settingVal) + ".bin"
	}
	src := filepath.Join(runPath, "static", name)

	if _, err := os.Stat(src); err != nil {
		return &MissingFileError{Path: src}
	}

	slog.Debug("staging static binary", "role", role, "src", src, "dst", dst)
	return copyFile(src, dst)
}
