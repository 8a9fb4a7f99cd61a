package cli

import (
	"fmt"

	"github.com/me/dayplan/internal/loader"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a plan file without scheduling anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loader.New(logger).LoadFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "OK: %d tasks, %d slots, %d rules\n",
				len(plan.Tasks), len(plan.Slots), len(plan.Rules))
			return err
		},
	}
}
