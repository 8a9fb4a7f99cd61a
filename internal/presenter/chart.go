package presenter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/me/dayplan/pkg/model"
)

// ChartTitle heads the stacked bar visualization.
const ChartTitle = "Daily Task Allocation"

// ChartOptions configures WriteChart.
type ChartOptions struct {
	// MinutesPerCell is the duration one block cell represents. Zero means 10.
	MinutesPerCell int
	// Color enables ANSI-colored blocks; disable when piping output.
	Color bool
}

// ANSI SGR foreground colors, cycled per task.
var palette = []string{
	"\x1b[36m", // cyan
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[35m", // magenta
	"\x1b[34m", // blue
	"\x1b[31m", // red
}

const sgrReset = "\x1b[0m"

// WriteChart renders the schedule as a stacked horizontal bar chart: one row
// per scheduled interval in chronological order, the start time on the left
// axis, a block scaled by duration, and a legend mapping colors to task
// names. Each distinct task name gets one color, assigned in chronological
// first-appearance order.
func WriteChart(w io.Writer, sched model.Schedule, opts ChartOptions) error {
	cell := opts.MinutesPerCell
	if cell <= 0 {
		cell = 10
	}

	rows := make([]model.ScheduledTask, len(sched.Scheduled))
	copy(rows, sched.Scheduled)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Start.Before(rows[j].Start)
	})

	colors := assignColors(rows)

	if _, err := fmt.Fprintf(w, "%s\n\n", ChartTitle); err != nil {
		return err
	}

	for _, st := range rows {
		width := st.Task.Duration / cell
		if width < 1 {
			width = 1
		}
		bar := strings.Repeat("█", width)
		if opts.Color {
			bar = colors[st.Task.Name] + bar + sgrReset
		}
		_, err := fmt.Fprintf(w, "%s  %s %s (%dm)\n",
			st.Start.Format(model.DateTime), bar, st.Task.Name, st.Task.Duration)
		if err != nil {
			return err
		}
	}

	if len(rows) > 0 {
		if err := writeLegend(w, rows, colors, opts.Color); err != nil {
			return err
		}
	}

	for _, task := range sched.Unscheduled {
		if _, err := fmt.Fprintf(w, "unscheduled: %s (%dm)\n", task.Name, task.Duration); err != nil {
			return err
		}
	}
	return nil
}

func writeLegend(w io.Writer, rows []model.ScheduledTask, colors map[string]string, color bool) error {
	if _, err := fmt.Fprintf(w, "\nLegend:\n"); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, st := range rows {
		if seen[st.Task.Name] {
			continue
		}
		seen[st.Task.Name] = true
		swatch := "■"
		if color {
			swatch = colors[st.Task.Name] + swatch + sgrReset
		}
		if _, err := fmt.Fprintf(w, "  %s %s\n", swatch, st.Task.Name); err != nil {
			return err
		}
	}
	return nil
}

// assignColors maps each distinct task name to a palette color in
// chronological first-appearance order.
func assignColors(rows []model.ScheduledTask) map[string]string {
	colors := make(map[string]string)
	next := 0
	for _, st := range rows {
		if _, ok := colors[st.Task.Name]; ok {
			continue
		}
		colors[st.Task.Name] = palette[next%len(palette)]
		next++
	}
	return colors
}
