package model

import (
	"time"
)

// DateOnly is the layout for task due dates.
const DateOnly = "2006-01-02"

// DateTime is the layout for slot boundaries and schedule output.
const DateTime = "2006-01-02 15:04:05"

// Task is a unit of work to be placed into free time.
// Lower Priority values are more urgent; ties are broken by earlier DueDate,
// then by original input order.
type Task struct {
	Name     string    `json:"name"`
	Duration int       `json:"duration"` // minutes, > 0
	Priority int       `json:"priority"`
	DueDate  time.Time `json:"due_date"` // date only, midnight UTC
}

// Slot is one contiguous block of free time.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Minutes returns the slot's remaining capacity in whole minutes.
func (s Slot) Minutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// ScheduledTask is a task bound to a concrete time interval.
// End.Sub(Start) always equals the task's declared duration.
type ScheduledTask struct {
	Task  Task      `json:"task"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Schedule is the allocator's result: placed tasks and tasks that fit
// nowhere, both in processing (priority) order.
type Schedule struct {
	Scheduled   []ScheduledTask `json:"scheduled"`
	Unscheduled []Task          `json:"unscheduled"`
}

// Rule is an optional priority-adjustment rule evaluated per task before
// ordering. When is a JavaScript boolean expression over the task;
// SetPriority is a JavaScript expression yielding the replacement priority.
type Rule struct {
	When        string `json:"when"`
	SetPriority string `json:"set_priority"`
}

// Plan is a validated input document: the tasks to place, the free slots to
// place them into, and optional priority rules.
type Plan struct {
	Name  string `json:"name,omitempty"`
	Tasks []Task `json:"tasks"`
	Slots []Slot `json:"time_slots"`
	Rules []Rule `json:"rules,omitempty"`
}

// PlanRun is one stored allocation run, as persisted by the server.
type PlanRun struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	Tasks       []Task          `json:"tasks"`
	Slots       []Slot          `json:"time_slots"`
	Scheduled   []ScheduledTask `json:"scheduled"`
	Unscheduled []Task          `json:"unscheduled"`
	CreatedAt   time.Time       `json:"created_at"`
}
