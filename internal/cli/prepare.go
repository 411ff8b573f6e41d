package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/rundir"
	"github.com/catrisk/runprep/internal/settings"
)

func newPrepareCmd() *cobra.Command {
	var (
		source           string
		analysisSettings string
		modelData        string
		inputsArchive    string
		reinsurance      bool
	)

	cmd := &cobra.Command{
		Use:   "prepare <run-dir>",
		Short: "Create a model run directory with the required topology",
		Long:  "Prepare creates the fifo/input/output/static/work skeleton under <run-dir>, stages source CSVs, RI layers, analysis settings and model data into it, or expands a pre-built inputs archive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runPath := args[0]

			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("model-data") && cfg.ModelDataDir != "" {
				modelData = cfg.ModelDataDir
			}

			return recordStage(cfg, runPath, "prepare", func() error {
				return rundir.PrepareRunDirectory(rundir.PrepareOptions{
					RunPath:              runPath,
					SourceFilesPath:      source,
					AnalysisSettingsPath: analysisSettings,
					ModelDataPath:        modelData,
					InputsArchivePath:    inputsArchive,
					Reinsurance:          reinsurance,
				})
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "directory of source CSVs (and RI_<n> trees) to copy in")
	cmd.Flags().StringVar(&analysisSettings, "analysis-settings", "", "analysis settings JSON to copy to the run root")
	cmd.Flags().StringVar(&modelData, "model-data", "", "model data pool to link into static/")
	cmd.Flags().StringVar(&inputsArchive, "inputs-archive", "", "pre-built inputs archive to expand instead of creating input/csv")
	cmd.Flags().BoolVar(&reinsurance, "reinsurance", false, "lay the run out for reinsurance (RI) layers")

	return cmd
}
