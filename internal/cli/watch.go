package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/catrisk/runprep/internal/fileset"
	"github.com/catrisk/runprep/internal/reporter"
	"github.com/catrisk/runprep/internal/settings"
	"github.com/catrisk/runprep/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		il    bool
		ri    bool
		poll  bool
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "watch <csv-dir>",
		Short: "Re-validate an input directory whenever it changes",
		Long:  "Watch monitors <csv-dir> (and its RI_<n> layers with --ri) and reports, live, which required CSVs are missing and which stale binaries are present.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			cfg, err := settings.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("poll") && cfg.PollWatch {
				poll = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			wcfg := watcher.Config{
				Dir:       dir,
				Registry:  fileset.Default(),
				IncludeIL: il || ri,
				IncludeRI: ri,
				Poll:      poll,
			}

			if plain {
				wcfg.OnResult = func(res watcher.Result) {
					fmt.Fprint(cmd.OutOrStdout(), reporter.FormatScan(res))
				}
				return watcher.Watch(ctx, wcfg)
			}
			return runWatchTUI(ctx, stop, dir, wcfg)
		},
	}

	cmd.Flags().BoolVar(&il, "il", false, "require insured-loss files")
	cmd.Flags().BoolVar(&ri, "ri", false, "watch reinsurance layers (implies --il)")
	cmd.Flags().BoolVar(&poll, "poll", false, "use polling instead of fsnotify")
	cmd.Flags().BoolVar(&plain, "plain", false, "print results instead of the live display")

	return cmd
}

// runWatchTUI pumps watcher results into the live display; quitting the
// display cancels the watcher.
func runWatchTUI(ctx context.Context, cancel func(), dir string, wcfg watcher.Config) error {
	results := make(chan watcher.Result, 8)
	wcfg.OnResult = func(res watcher.Result) { results <- res }

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Watch(ctx, wcfg)
		close(results)
	}()

	p := tea.NewProgram(reporter.NewWatchModel(dir, results, cancel))
	if _, err := p.Run(); err != nil {
		cancel()
		<-watchErr
		return fmt.Errorf("watch display: %w", err)
	}

	cancel()
	return <-watchErr
}
