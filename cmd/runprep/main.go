package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/catrisk/runprep/internal/archive"
	"github.com/catrisk/runprep/internal/cli"
	"github.com/catrisk/runprep/internal/convert"
	"github.com/catrisk/runprep/internal/rundir"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes bad inputs (2) from operational failures (1) so
// pipeline wrappers can tell remediation from breakage.
func exitCode(err error) int {
	var (
		missingFile   *rundir.MissingFileError
		staleBinary   *rundir.StaleBinaryError
		missingTool   *convert.MissingToolError
		missingMember *archive.MissingMemberError
	)
	if errors.As(err, &missingFile) || errors.As(err, &staleBinary) ||
		errors.As(err, &missingTool) || errors.As(err, &missingMember) {
		return 2
	}
	return 1
}
