// Package scheduler implements dependency-aware rescheduling and critical
// path analysis over a chart's task and dependency lists.
package scheduler

import (
	"log/slog"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/task"
)

// Schedule pushes each dependent task's start to no earlier than the day
// after its latest-finishing predecessor (plus the dependency's lag),
// preserving each task's duration. Tasks without predecessors keep their
// dates.
//
// The input is never mutated: the result is a rescheduled deep copy the
// caller applies explicitly. Predecessors come from the dependency list at
// call time, not from the tasks' cached DependsOn arrays. A cycle found
// mid-traversal skips the closing edge with a warning instead of looping.
func Schedule(tasks []*task.Task, deps []*task.Dependency, logger *slog.Logger) []*task.Task {
	if logger == nil {
		logger = slog.Default()
	}

	scheduled := task.CloneTasks(tasks)
	byID := make(map[int]*task.Task, len(scheduled))
	for _, t := range scheduled {
		byID[t.ID] = t
	}

	preds := make(map[int][]*task.Dependency, len(deps))
	for _, d := range deps {
		preds[d.To] = append(preds[d.To], d)
	}

	order := topoOrder(scheduled, preds, logger)

	for _, id := range order {
		t := byID[id]
		incoming := preds[id]
		if len(incoming) == 0 {
			continue
		}

		var newStart dates.Date
		found := false
		for _, d := range incoming {
			pred, ok := byID[d.From]
			if !ok {
				continue
			}
			candidate := pred.End.AddDays(1 + d.Lag)
			if !found || candidate.After(newStart) {
				newStart = candidate
				found = true
			}
		}
		if !found {
			continue
		}

		// Duration is recomputed from the task's current dates, so repeated
		// scheduling of corrupted data converges instead of drifting.
		duration := dates.DaysBetween(t.Start, t.End)
		t.Start = newStart
		t.End = newStart.AddDays(duration)
	}

	return scheduled
}

// topoOrder orders task IDs so every task follows all of its predecessors.
// DFS visits predecessors before the task itself; an edge that would revisit
// a task still being visited closes a cycle and is skipped with a warning.
func topoOrder(tasks []*task.Task, preds map[int][]*task.Dependency, logger *slog.Logger) []int {
	visited := make(map[int]bool, len(tasks))
	visiting := make(map[int]bool)
	order := make([]int, 0, len(tasks))

	byID := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = true
	}

	var visit func(id int)
	visit = func(id int) {
		if visited[id] || !byID[id] {
			return
		}
		if visiting[id] {
			logger.Warn("dependency cycle during scheduling, skipping edge", "task", id)
			return
		}
		visiting[id] = true
		for _, d := range preds[id] {
			visit(d.From)
		}
		visiting[id] = false
		visited[id] = true
		order = append(order, id)
	}

	for _, t := range tasks {
		visit(t.ID)
	}
	return order
}
