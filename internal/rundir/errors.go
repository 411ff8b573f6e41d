package rundir

import "fmt"

// MissingFileError reports an expected CSV or static binary that is absent.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("failed to find %s", e.Path)
}

// StaleBinaryError reports a binary that already exists where validation
// forbids one, guarding against re-running conversion over stale output.
type StaleBinaryError struct {
	Path string
}

func (e *StaleBinaryError) Error() string {
	return fmt.Sprintf("binary file already exists: %s", e.Path)
}
