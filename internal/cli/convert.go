package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/convert"
	"github.com/catrisk/runprep/internal/fileset"
	"github.com/catrisk/runprep/internal/settings"
)

func newConvertCmd() *cobra.Command {
	var (
		il          bool
		ri          bool
		workers     int
		toolTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "convert <csv-dir> <bin-dir>",
		Short: "Convert input CSVs into engine binaries",
		Long:  "Convert runs each registered conversion tool over the CSVs present in <csv-dir>, writing binaries to <bin-dir>; with --ri the pass repeats for every RI_<n> layer. Absent CSVs are skipped.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvDir, binDir := args[0], args[1]

			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
				workers = cfg.Workers
			}
			if !cmd.Flags().Changed("tool-timeout") && cfg.ToolTimeout > 0 {
				toolTimeout = cfg.ToolTimeout
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return recordStage(cfg, binDir, "convert", func() error {
				return convert.CreateBinaryFiles(ctx, fileset.Default(), csvDir, binDir, convert.Options{
					IncludeIL:   il,
					IncludeRI:   ri,
					Workers:     workers,
					ToolTimeout: toolTimeout,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&il, "il", false, "convert insured-loss files")
	cmd.Flags().BoolVar(&ri, "ri", false, "convert reinsurance layers (implies --il)")
	cmd.Flags().IntVar(&workers, "workers", 4, "max parallel tool processes")
	cmd.Flags().DurationVar(&toolTimeout, "tool-timeout", 10*time.Minute, "per-tool timeout (0 disables)")

	return cmd
}
