package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/rundir"
	"github.com/catrisk/runprep/internal/settings"
)

func newInputsCmd() *cobra.Command {
	var analysisSettings string

	cmd := &cobra.Command{
		Use:   "inputs <run-dir>",
		Short: "Stage the shared static binaries into a run's input directory",
		Long:  "Inputs copies the events, return-period, occurrence and (when present) periods binaries from the run's static pool into input/, honoring the event_set and event_occurrence_id model settings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runPath := args[0]

			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			settingsPath := analysisSettings
			if settingsPath == "" {
				settingsPath = filepath.Join(runPath, "analysis_settings.json")
			}

			var as *settings.AnalysisSettings
			as, err = settings.LoadAnalysisSettings(settingsPath)
			if err != nil {
				if analysisSettings == "" && errors.Is(err, os.ErrNotExist) {
					// No settings document staged: fall back to default names.
					slog.Debug("no analysis settings found", "path", settingsPath)
					as = nil
				} else {
					return err
				}
			}

			return recordStage(cfg, runPath, "inputs", func() error {
				return rundir.PrepareRunInputs(as, runPath)
			})
		},
	}

	cmd.Flags().StringVar(&analysisSettings, "analysis-settings", "", "analysis settings JSON (default <run-dir>/analysis_settings.json)")

	return cmd
}
