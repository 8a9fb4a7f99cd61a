package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/me/dayplan/pkg/model"
)

// Allocate orders tasks by urgency and greedily places each into the
// earliest remaining slot with sufficient capacity. Placing a task at the
// start of a slot shrinks the slot to its unconsumed tail; a fully consumed
// slot leaves the pool. A task that fits no remaining slot goes to the
// Unscheduled list and never blocks later tasks.
//
// Slots may arrive in any order; the allocator sorts its own copy of the
// pool by start time. Neither input slice is modified, so repeated calls on
// the same inputs yield identical results.
//
// Returns an error only for structurally invalid input (empty task name,
// non-positive duration, slot whose end is not after its start). The loader
// rejects these already; the allocator re-checks so bad records can never
// corrupt a slot.
func Allocate(tasks []model.Task, slots []model.Slot) (model.Schedule, error) {
	if err := validate(tasks, slots); err != nil {
		return model.Schedule{}, err
	}

	pool := make([]model.Slot, len(slots))
	copy(pool, slots)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Start.Before(pool[j].Start)
	})

	result := model.Schedule{
		Scheduled:   []model.ScheduledTask{},
		Unscheduled: []model.Task{},
	}

	for _, task := range OrderTasks(tasks) {
		idx := -1
		for i, slot := range pool {
			if slot.Minutes() >= task.Duration {
				idx = i
				break
			}
		}
		if idx < 0 {
			result.Unscheduled = append(result.Unscheduled, task)
			continue
		}

		slot := pool[idx]
		end := slot.Start.Add(time.Duration(task.Duration) * time.Minute)
		result.Scheduled = append(result.Scheduled, model.ScheduledTask{
			Task:  task,
			Start: slot.Start,
			End:   end,
		})

		if end.Before(slot.End) {
			pool[idx].Start = end
		} else {
			pool = append(pool[:idx], pool[idx+1:]...)
		}
	}

	return result, nil
}

// validate rejects structurally invalid tasks and slots.
func validate(tasks []model.Task, slots []model.Slot) error {
	for i, task := range tasks {
		if task.Name == "" {
			return fmt.Errorf("task[%d]: empty name", i)
		}
		if task.Duration <= 0 {
			return fmt.Errorf("task[%d] %q: duration must be positive, got %d", i, task.Name, task.Duration)
		}
	}
	for i, slot := range slots {
		if !slot.End.After(slot.Start) {
			return fmt.Errorf("slot[%d]: end %s is not after start %s",
				i, slot.End.Format(model.DateTime), slot.Start.Format(model.DateTime))
		}
	}
	return nil
}
