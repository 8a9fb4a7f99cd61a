package cli

import (
	"fmt"
	"time"

	"github.com/me/dayplan/internal/loader"
	"github.com/me/dayplan/internal/presenter"
	"github.com/me/dayplan/internal/rules"
	"github.com/me/dayplan/internal/scheduler"
	"github.com/me/dayplan/pkg/model"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var noChart bool
	var noColor bool
	var cellMinutes int
	var refDate string

	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Allocate the tasks in a plan file and print the schedule",
		Long: `Reads a plan file (YAML or JSON) containing tasks and time slots,
orders the tasks by urgency (priority, then due date), places each into the
earliest slot with enough remaining capacity, and prints the schedule
followed by a stacked bar chart of the day.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := time.Now().UTC()
			if refDate != "" {
				var err error
				ref, err = time.Parse(model.DateOnly, refDate)
				if err != nil {
					return fmt.Errorf("invalid --ref-date %q, want YYYY-MM-DD", refDate)
				}
			}

			sched, err := runPlan(args[0], ref)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := presenter.WriteText(out, sched); err != nil {
				return err
			}
			if noChart {
				return nil
			}
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
			return presenter.WriteChart(out, sched, presenter.ChartOptions{
				MinutesPerCell: cellMinutes,
				Color:          !noColor,
			})
		},
	}

	cmd.Flags().BoolVar(&noChart, "no-chart", false, "Skip the bar chart")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Render the chart without ANSI colors")
	cmd.Flags().IntVar(&cellMinutes, "cell-minutes", 10, "Minutes represented by one chart cell")
	cmd.Flags().StringVar(&refDate, "ref-date", "", "Reference date for rule due_in_days (default: today, YYYY-MM-DD)")

	return cmd
}

// runPlan loads a plan file, applies its priority rules, and allocates.
func runPlan(path string, refDate time.Time) (model.Schedule, error) {
	plan, err := loader.New(logger).LoadFile(path)
	if err != nil {
		return model.Schedule{}, err
	}

	tasks, err := rules.New(logger, refDate).Apply(plan.Tasks, plan.Rules)
	if err != nil {
		return model.Schedule{}, err
	}

	sched, err := scheduler.Allocate(tasks, plan.Slots)
	if err != nil {
		return model.Schedule{}, err
	}

	logger.Debug("allocation done",
		"scheduled", len(sched.Scheduled),
		"unscheduled", len(sched.Unscheduled),
	)
	return sched, nil
}
