package scheduler

import (
	"fmt"
	"sort"

	"github.com/ganttkit/ganttkit/internal/task"
)

// TaskSchedule holds the critical-path numbers for one task, in working
// days relative to the chart's earliest start.
type TaskSchedule struct {
	TaskID         int  `json:"task_id"`
	EarliestStart  int  `json:"earliest_start"`
	EarliestFinish int  `json:"earliest_finish"`
	LatestStart    int  `json:"latest_start"`
	LatestFinish   int  `json:"latest_finish"`
	Slack          int  `json:"slack"`
	Critical       bool `json:"critical"`
}

// Analysis is the result of a critical-path pass.
type Analysis struct {
	Tasks map[int]*TaskSchedule `json:"tasks"`
	// Order is a topological order of the task IDs.
	Order []int `json:"order"`
	// TotalDays is the length of the longest dependency chain.
	TotalDays int `json:"total_days"`
	// CriticalPath lists zero-slack tasks in topological order.
	CriticalPath []int `json:"critical_path"`
}

// CriticalPath runs critical path method analysis over the dependency graph:
// a forward pass for earliest start/finish, a backward pass for latest
// start/finish, slack as the difference. Durations are the tasks' inclusive
// day counts. Fails on a cyclic graph.
func CriticalPath(tasks []*task.Task, deps []*task.Dependency) (*Analysis, error) {
	order, err := kahnOrder(tasks, deps)
	if err != nil {
		return nil, err
	}

	durations := make(map[int]int, len(tasks))
	for _, t := range tasks {
		durations[t.ID] = t.Duration()
	}

	succ := make(map[int][]int, len(deps))
	pred := make(map[int][]int, len(deps))
	for _, d := range deps {
		if _, ok := durations[d.From]; !ok {
			continue
		}
		if _, ok := durations[d.To]; !ok {
			continue
		}
		succ[d.From] = append(succ[d.From], d.To)
		pred[d.To] = append(pred[d.To], d.From)
	}

	a := &Analysis{
		Tasks: make(map[int]*TaskSchedule, len(tasks)),
		Order: order,
	}
	for _, id := range order {
		a.Tasks[id] = &TaskSchedule{TaskID: id}
	}

	// Forward pass: earliest start is the max earliest finish of predecessors.
	for _, id := range order {
		ts := a.Tasks[id]
		for _, p := range pred[id] {
			if pf := a.Tasks[p].EarliestFinish; pf > ts.EarliestStart {
				ts.EarliestStart = pf
			}
		}
		ts.EarliestFinish = ts.EarliestStart + durations[id]
		if ts.EarliestFinish > a.TotalDays {
			a.TotalDays = ts.EarliestFinish
		}
	}

	// Backward pass in reverse topological order: latest finish is the min
	// latest start of successors; sinks finish at the total duration.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := a.Tasks[id]
		if len(succ[id]) == 0 {
			ts.LatestFinish = a.TotalDays
		} else {
			min := a.TotalDays
			for _, s := range succ[id] {
				if ls := a.Tasks[s].LatestStart; ls < min {
					min = ls
				}
			}
			ts.LatestFinish = min
		}
		ts.LatestStart = ts.LatestFinish - durations[id]
		ts.Slack = ts.LatestStart - ts.EarliestStart
		ts.Critical = ts.Slack == 0
	}

	for _, id := range order {
		if a.Tasks[id].Critical {
			a.CriticalPath = append(a.CriticalPath, id)
		}
	}
	return a, nil
}

// kahnOrder topologically sorts task IDs with Kahn's algorithm, breaking
// ties by ID for determinism. Edges referencing unknown tasks are ignored.
func kahnOrder(tasks []*task.Task, deps []*task.Dependency) ([]int, error) {
	known := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}

	inDegree := make(map[int]int, len(tasks))
	succ := make(map[int][]int, len(deps))
	for _, t := range tasks {
		inDegree[t.ID] = 0
	}
	for _, d := range deps {
		if !known[d.From] || !known[d.To] {
			continue
		}
		succ[d.From] = append(succ[d.From], d.To)
		inDegree[d.To]++
	}

	var queue []int
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Ints(queue)

	order := make([]int, 0, len(tasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var released []int
		for _, s := range succ[id] {
			inDegree[s]--
			if inDegree[s] == 0 {
				released = append(released, s)
			}
		}
		sort.Ints(released)
		queue = append(queue, released...)
	}

	if len(order) != len(tasks) {
		return nil, fmt.Errorf("dependency graph has a cycle: %d of %d tasks unreachable",
			len(tasks)-len(order), len(tasks))
	}
	return order, nil
}
