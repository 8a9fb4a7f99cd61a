// Package presenter renders allocation results for the terminal: one line
// per scheduled task, plus a stacked bar chart of the day.
package presenter

import (
	"fmt"
	"io"

	"github.com/me/dayplan/pkg/model"
)

// WriteText writes one line per scheduled task in processing order,
// followed by one line per unscheduled task.
func WriteText(w io.Writer, sched model.Schedule) error {
	for _, st := range sched.Scheduled {
		_, err := fmt.Fprintf(w, "Task: %s, Start: %s, End: %s\n",
			st.Task.Name,
			st.Start.Format(model.DateTime),
			st.End.Format(model.DateTime),
		)
		if err != nil {
			return err
		}
	}
	for _, task := range sched.Unscheduled {
		if _, err := fmt.Fprintf(w, "Unscheduled: %s (%dm)\n", task.Name, task.Duration); err != nil {
			return err
		}
	}
	return nil
}
