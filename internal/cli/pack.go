package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/archive"
	"github.com/catrisk/runprep/internal/fileset"
	"github.com/catrisk/runprep/internal/settings"
)

func newPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack <bin-dir>",
		Short: "Package a directory's binaries into " + fileset.TarFile,
		Long:  "Pack bundles every base-layer and RI-layer binary under <bin-dir> into a gzip-compressed tar at <bin-dir>/" + fileset.TarFile + ", preserving the layered layout in the member paths.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			return recordStage(cfg, dir, "pack", func() error {
				if err := archive.CreateBinaryTarFile(dir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "packaged %s\n", filepath.Join(dir, fileset.TarFile))
				return nil
			})
		},
	}
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var il bool

	cmd := &cobra.Command{
		Use:   "verify <tar-path>",
		Short: "Verify that an inputs archive carries every required binary",
		Long:  "Verify opens an inputs archive and checks the base-layer member set: the core binaries, plus the insured-loss binaries with --il. RI-layer completeness is not cross-checked.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tarPath := args[0]

			if err := archive.CheckBinaryTarFile(tarPath, fileset.Default(), il); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archive ok: %s\n", tarPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&il, "il", false, "require insured-loss binaries too")

	return cmd
}
