package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/reporter"
	"github.com/catrisk/runprep/internal/settings"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recently recorded pipeline stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			led := openLedger(cfg)
			if led == nil {
				return fmt.Errorf("run ledger unavailable")
			}
			defer func() { _ = led.Close() }()

			entries, err := led.Recent(limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), reporter.FormatRuns(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max entries to list")

	return cmd
}
