// Package loader parses plan documents (YAML or JSON) into validated
// model records. All load-time validation lives here: the scheduler core
// assumes well-formed tasks and slots.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/me/dayplan/pkg/model"
	"gopkg.in/yaml.v3"
)

// Loader converts raw plan documents into typed, validated model.Plan values.
type Loader struct {
	logger *slog.Logger
}

// New creates a Loader with the given logger.
func New(logger *slog.Logger) *Loader {
	return &Loader{logger: logger.With("component", "loader")}
}

// rawPlan mirrors the document shape before validation. Numeric fields are
// pointers so a missing field is distinguishable from a zero value.
type rawPlan struct {
	Name      string    `yaml:"name"`
	Tasks     []rawTask `yaml:"tasks"`
	TimeSlots []rawSlot `yaml:"time_slots"`
	Slots     []rawSlot `yaml:"slots"` // accepted alias for time_slots
	Rules     []rawRule `yaml:"rules"`
}

type rawTask struct {
	Name     string `yaml:"name"`
	Duration *int   `yaml:"duration"`
	Priority *int   `yaml:"priority"`
	DueDate  string `yaml:"due_date"`
}

type rawSlot struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type rawRule struct {
	When        string `yaml:"when"`
	SetPriority string `yaml:"set_priority"`
}

// LoadFile reads and parses a plan document from disk.
func (l *Loader) LoadFile(path string) (*model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return l.Parse(data)
}

// Parse parses a plan document. JSON input works too since yaml.v3 accepts
// JSON. Any malformed or missing field aborts the load with a validation
// error listing every offending field.
func (l *Loader) Parse(data []byte) (*model.Plan, error) {
	var raw rawPlan
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse plan document: %w", err)
	}

	rawSlots := raw.TimeSlots
	if len(rawSlots) == 0 {
		rawSlots = raw.Slots
	}

	var fieldErrs []model.FieldError
	plan := &model.Plan{
		Name:  raw.Name,
		Tasks: make([]model.Task, 0, len(raw.Tasks)),
		Slots: make([]model.Slot, 0, len(rawSlots)),
	}

	for i, rt := range raw.Tasks {
		task, errs := convertTask(i, rt)
		if len(errs) > 0 {
			fieldErrs = append(fieldErrs, errs...)
			continue
		}
		plan.Tasks = append(plan.Tasks, task)
	}

	for i, rs := range rawSlots {
		slot, errs := convertSlot(i, rs)
		if len(errs) > 0 {
			fieldErrs = append(fieldErrs, errs...)
			continue
		}
		plan.Slots = append(plan.Slots, slot)
	}

	for i, rr := range raw.Rules {
		if rr.When == "" {
			fieldErrs = append(fieldErrs, model.FieldError{
				Field:   fmt.Sprintf("rules[%d].when", i),
				Message: "expression is required",
			})
		}
		if rr.SetPriority == "" {
			fieldErrs = append(fieldErrs, model.FieldError{
				Field:   fmt.Sprintf("rules[%d].set_priority", i),
				Message: "expression is required",
			})
		}
		plan.Rules = append(plan.Rules, model.Rule{When: rr.When, SetPriority: rr.SetPriority})
	}

	if len(fieldErrs) > 0 {
		return nil, model.NewValidationError("invalid plan document", fieldErrs...)
	}

	l.logger.Debug("plan loaded",
		"name", plan.Name,
		"tasks", len(plan.Tasks),
		"slots", len(plan.Slots),
		"rules", len(plan.Rules),
	)
	return plan, nil
}

func convertTask(i int, rt rawTask) (model.Task, []model.FieldError) {
	var errs []model.FieldError
	field := func(name string) string { return fmt.Sprintf("tasks[%d].%s", i, name) }

	if rt.Name == "" {
		errs = append(errs, model.FieldError{Field: field("name"), Message: "name is required"})
	}
	if rt.Duration == nil {
		errs = append(errs, model.FieldError{Field: field("duration"), Message: "duration is required"})
	} else if *rt.Duration <= 0 {
		errs = append(errs, model.FieldError{
			Field:   field("duration"),
			Message: fmt.Sprintf("duration must be a positive number of minutes, got %d", *rt.Duration),
		})
	}
	if rt.Priority == nil {
		errs = append(errs, model.FieldError{Field: field("priority"), Message: "priority is required"})
	}

	var due time.Time
	if rt.DueDate == "" {
		errs = append(errs, model.FieldError{Field: field("due_date"), Message: "due_date is required"})
	} else {
		var err error
		due, err = time.Parse(model.DateOnly, rt.DueDate)
		if err != nil {
			errs = append(errs, model.FieldError{
				Field:   field("due_date"),
				Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", rt.DueDate),
			})
		}
	}

	if len(errs) > 0 {
		return model.Task{}, errs
	}
	return model.Task{
		Name:     rt.Name,
		Duration: *rt.Duration,
		Priority: *rt.Priority,
		DueDate:  due,
	}, nil
}

func convertSlot(i int, rs rawSlot) (model.Slot, []model.FieldError) {
	var errs []model.FieldError
	field := func(name string) string { return fmt.Sprintf("time_slots[%d].%s", i, name) }

	start, err := parseDateTime(rs.Start)
	if err != nil {
		errs = append(errs, model.FieldError{Field: field("start"), Message: err.Error()})
	}
	end, err := parseDateTime(rs.End)
	if err != nil {
		errs = append(errs, model.FieldError{Field: field("end"), Message: err.Error()})
	}
	if len(errs) == 0 && !end.After(start) {
		errs = append(errs, model.FieldError{
			Field:   field("end"),
			Message: fmt.Sprintf("end %q must be after start %q", rs.End, rs.Start),
		})
	}

	if len(errs) > 0 {
		return model.Slot{}, errs
	}
	return model.Slot{Start: start, End: end}, nil
}

// parseDateTime accepts "YYYY-MM-DD HH:MM" and "YYYY-MM-DD HH:MM:SS".
func parseDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("datetime is required")
	}
	for _, layout := range []string{model.DateTime, "2006-01-02 15:04"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q, want YYYY-MM-DD HH:MM[:SS]", s)
}
