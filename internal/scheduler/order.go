// Package scheduler implements the allocation core: a deterministic
// ordering policy over tasks and a greedy earliest-fit allocator that
// places each task into the remaining slot capacity.
package scheduler

import (
	"sort"

	"github.com/me/dayplan/pkg/model"
)

// CompareTasks is the ordering policy's comparator. It returns a negative
// value when a must be processed before b, positive when after, and zero
// when the two are fully tied.
//
// The total order is:
//  1. Priority ascending — a lower numeric priority is more urgent.
//  2. DueDate ascending — an earlier due date wins among equal priorities.
//
// Fully tied tasks keep their original input order (OrderTasks sorts
// stably), so the tie-break is the input index, not an arbitrary choice.
func CompareTasks(a, b model.Task) int {
	if a.Priority != b.Priority {
		if a.Priority < b.Priority {
			return -1
		}
		return 1
	}
	if !a.DueDate.Equal(b.DueDate) {
		if a.DueDate.Before(b.DueDate) {
			return -1
		}
		return 1
	}
	return 0
}

// OrderTasks returns a new slice with tasks in processing order per
// CompareTasks. The input slice is not modified.
func OrderTasks(tasks []model.Task) []model.Task {
	ordered := make([]model.Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return CompareTasks(ordered[i], ordered[j]) < 0
	})
	return ordered
}
