// Package rules applies optional priority-adjustment rules to tasks before
// ordering. Rules are JavaScript expressions evaluated with goja against a
// per-task context object.
package rules

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dop251/goja"
	"github.com/me/dayplan/pkg/model"
)

// Engine evaluates priority rules using a JavaScript runtime.
type Engine struct {
	logger  *slog.Logger
	refDate time.Time // date used to compute task.due_in_days
}

// New creates a rule engine. refDate anchors the due_in_days context value;
// it is truncated to midnight UTC.
func New(logger *slog.Logger, refDate time.Time) *Engine {
	y, m, d := refDate.UTC().Date()
	return &Engine{
		logger:  logger.With("component", "rules"),
		refDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

// Apply evaluates every rule against every task and returns a new task
// slice with adjusted priorities. The input slice is not modified. Rules
// fire in document order; a later rule sees the priority set by an earlier
// one. An evaluation error aborts the run — a rule that cannot be evaluated
// must never silently produce a plausible-looking priority.
func (e *Engine) Apply(tasks []model.Task, ruleList []model.Rule) ([]model.Task, error) {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	if len(ruleList) == 0 {
		return out, nil
	}

	for ti := range out {
		for ri, rule := range ruleList {
			fired, newPriority, err := e.evaluate(rule, out[ti])
			if err != nil {
				return nil, fmt.Errorf("rule[%d] on task %q: %w", ri, out[ti].Name, err)
			}
			if !fired {
				continue
			}
			e.logger.Debug("rule fired",
				"rule", ri,
				"task", out[ti].Name,
				"old_priority", out[ti].Priority,
				"new_priority", newPriority,
			)
			out[ti].Priority = newPriority
		}
	}
	return out, nil
}

// evaluate runs one rule against one task in a fresh VM.
func (e *Engine) evaluate(rule model.Rule, task model.Task) (fired bool, priority int, err error) {
	vm := goja.New()
	if err := vm.Set("task", e.taskContext(task)); err != nil {
		return false, 0, fmt.Errorf("set task context: %w", err)
	}

	cond, err := vm.RunString(rule.When)
	if err != nil {
		return false, 0, fmt.Errorf("when: %w", err)
	}
	if !cond.ToBoolean() {
		return false, 0, nil
	}

	val, err := vm.RunString(rule.SetPriority)
	if err != nil {
		return false, 0, fmt.Errorf("set_priority: %w", err)
	}
	priority, err = exportInt(val)
	if err != nil {
		return false, 0, fmt.Errorf("set_priority: %w", err)
	}
	return true, priority, nil
}

// taskContext builds the object bound as `task` in rule expressions.
func (e *Engine) taskContext(task model.Task) map[string]any {
	return map[string]any{
		"name":        task.Name,
		"duration":    task.Duration,
		"priority":    task.Priority,
		"due_date":    task.DueDate.Format(model.DateOnly),
		"due_in_days": int(task.DueDate.Sub(e.refDate).Hours() / 24),
	}
}

// exportInt converts a JS result to an integer priority.
func exportInt(v goja.Value) (int, error) {
	switch exported := v.Export().(type) {
	case int64:
		return int(exported), nil
	case float64:
		if exported != math.Trunc(exported) || math.IsNaN(exported) || math.IsInf(exported, 0) {
			return 0, fmt.Errorf("expression yielded %v, want an integer", exported)
		}
		return int(exported), nil
	default:
		return 0, fmt.Errorf("expression yielded %T, want an integer", exported)
	}
}
