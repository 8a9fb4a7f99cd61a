package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testPlan = `
name: monday
tasks:
  - name: Write Report
    duration: 60
    priority: 1
    due_date: "2024-11-12"
  - name: Rake Leaves
    duration: 60
    priority: 2
    due_date: "2024-11-11"
time_slots:
  - start: "2024-11-11 10:00"
    end: "2024-11-11 11:00"
  - start: "2024-11-11 11:00"
    end: "2024-11-11 12:00"
`

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	path := writePlan(t, testPlan)
	out, err := execute(t, "plan", path, "--no-color")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}

	if !strings.Contains(out, "Task: Write Report, Start: 2024-11-11 10:00:00, End: 2024-11-11 11:00:00") {
		t.Errorf("missing Write Report line:\n%s", out)
	}
	if !strings.Contains(out, "Task: Rake Leaves, Start: 2024-11-11 11:00:00, End: 2024-11-11 12:00:00") {
		t.Errorf("missing Rake Leaves line:\n%s", out)
	}
	if !strings.Contains(out, "Daily Task Allocation") {
		t.Errorf("missing chart title:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Errorf("missing legend:\n%s", out)
	}
}

func TestPlanCommand_NoChart(t *testing.T) {
	path := writePlan(t, testPlan)
	out, err := execute(t, "plan", path, "--no-chart")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	if strings.Contains(out, "Daily Task Allocation") {
		t.Errorf("--no-chart still rendered the chart:\n%s", out)
	}
}

func TestPlanCommand_Unscheduled(t *testing.T) {
	path := writePlan(t, `
tasks:
  - name: Clean Garage
    duration: 60
    priority: 1
    due_date: "2024-11-11"
time_slots:
  - start: "2024-11-11 09:00"
    end: "2024-11-11 09:30"
`)
	out, err := execute(t, "plan", path, "--no-chart")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Unscheduled: Clean Garage (60m)") {
		t.Errorf("missing unscheduled report:\n%s", out)
	}
	if strings.Contains(out, "Task: Clean Garage") {
		t.Errorf("oversized task was scheduled:\n%s", out)
	}
}

func TestPlanCommand_Rules(t *testing.T) {
	path := writePlan(t, `
tasks:
  - name: Urgent Soon
    duration: 30
    priority: 5
    due_date: "2024-11-11"
  - name: Steady
    duration: 30
    priority: 3
    due_date: "2024-12-01"
time_slots:
  - start: "2024-11-11 09:00"
    end: "2024-11-11 10:00"
rules:
  - when: "task.due_in_days <= 0"
    set_priority: "1"
`)
	out, err := execute(t, "plan", path, "--no-chart", "--ref-date", "2024-11-11")
	if err != nil {
		t.Fatalf("plan: %v\n%s", err, out)
	}
	// Rule boosts Urgent Soon to priority 1, so it takes the 09:00 slot.
	if !strings.Contains(out, "Task: Urgent Soon, Start: 2024-11-11 09:00:00") {
		t.Errorf("rule-boosted task not first:\n%s", out)
	}
}

func TestPlanCommand_InvalidFile(t *testing.T) {
	path := writePlan(t, "tasks:\n  - name: x\n")
	if _, err := execute(t, "plan", path); err == nil {
		t.Error("plan accepted an invalid file")
	}

	if _, err := execute(t, "plan", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("plan accepted a missing file")
	}
}

func TestValidateCommand(t *testing.T) {
	path := writePlan(t, testPlan)
	out, err := execute(t, "validate", path)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "OK: 2 tasks, 2 slots, 0 rules") {
		t.Errorf("unexpected validate output:\n%s", out)
	}
}

func TestPlanCommand_RequiresFileArg(t *testing.T) {
	if _, err := execute(t, "plan"); err == nil {
		t.Error("plan without a file argument should fail")
	}
}
