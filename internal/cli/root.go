package cli

import (
	"log/slog"

	"github.com/me/dayplan/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the dayplan CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dayplan",
		Short: "dayplan — allocate tasks into free time slots",
		Long:  "dayplan reads a plan file of tasks and free time slots and produces a non-overlapping daily schedule, most urgent tasks first.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(flagLogLevel, flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newPlanCmd(),
		newValidateCmd(),
		newServeCmd(),
	)

	return root
}
