package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/fileset"
	"github.com/catrisk/runprep/internal/rundir"
	"github.com/catrisk/runprep/internal/settings"
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup <bin-dir>",
		Short: "Remove generated binaries and the packaged archive",
		Long:  "Cleanup deletes " + fileset.TarFile + " and every registered <name>.bin from <bin-dir>, restoring it to its pre-conversion state. Already-absent files are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			return recordStage(cfg, dir, "cleanup", func() error {
				return rundir.CleanupBinDirectory(fileset.Default(), dir)
			})
		},
	}
	return cmd
}
