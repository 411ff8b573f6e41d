package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/convert"
	"github.com/catrisk/runprep/internal/fileset"
	"github.com/catrisk/runprep/internal/reporter"
	"github.com/catrisk/runprep/internal/rundir"
	"github.com/catrisk/runprep/internal/settings"
	"github.com/catrisk/runprep/internal/watcher"
)

func newCheckCmd() *cobra.Command {
	var (
		il            bool
		ri            bool
		allowBinaries bool
		skipTools     bool
	)

	cmd := &cobra.Command{
		Use:   "check <csv-dir>",
		Short: "Verify conversion tools and required input CSVs before a run",
		Long:  "Check resolves every conversion tool of the active file set on PATH, then verifies that all required CSVs exist in <csv-dir> (and every RI_<n> layer) with no stale binaries beside them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			reg := fileset.Default()
			includeIL := il || ri

			return recordStage(cfg, dir, "check", func() error {
				if !skipTools {
					if err := convert.CheckTools(reg, includeIL); err != nil {
						return err
					}
				}
				if err := rundir.CheckInputsDirectory(reg, dir, rundir.CheckOptions{
					IncludeIL:           includeIL,
					IncludeRI:           ri,
					CheckBinariesAbsent: !allowBinaries,
				}); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), reporter.FormatScan(watcher.Scan(reg, dir, includeIL, ri)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&il, "il", false, "include insured-loss files")
	cmd.Flags().BoolVar(&ri, "ri", false, "include reinsurance layers (implies --il)")
	cmd.Flags().BoolVar(&allowBinaries, "allow-binaries", false, "do not fail on binaries already present")
	cmd.Flags().BoolVar(&skipTools, "skip-tools", false, "skip the conversion-tool availability check")

	return cmd
}
