// Package convert drives the external per-file conversion tools that turn
// run CSVs into the binaries the numerical engine reads.
package convert

import (
	"log/slog"
	"os/exec"

	"github.com/catrisk/runprep/internal/fileset"
)

// MissingToolError reports a conversion tool that cannot be resolved on the
// executable search path.
type MissingToolError struct {
	Tool string
}

func (e *MissingToolError) Error() string {
	return "failed to find conversion tool: " + e.Tool
}

// CheckTools verifies that every conversion tool referenced by the active
// file set resolves on PATH. Run this once before a conversion pipeline;
// conversion itself does not re-check.
func CheckTools(reg *fileset.Registry, includeIL bool) error {
	for _, tool := range reg.Tools(includeIL) {
		if _, err := exec.LookPath(tool); err != nil {
			slog.Error("conversion tool not found", "tool", tool)
			return &MissingToolError{Tool: tool}
		}
		slog.Debug("conversion tool available", "tool", tool)
	}
	return nil
}
