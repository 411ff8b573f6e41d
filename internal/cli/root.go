package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version, Commit and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configFile string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "runprep",
		Short: "Prepare, validate and package model run inputs",
		Long:  "runprep builds catastrophe-model run directories, converts CSV inputs into the binaries the numerical engine consumes, and packages the results for transport.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", ".runprep.yml", "path to config file")

	root.AddCommand(newPrepareCmd())
	root.AddCommand(newInputsCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newPackCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newCleanupCmd())
	root.AddCommand(newRunsCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())

	return root
}
