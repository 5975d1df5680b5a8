package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/task"
)

func mustDate(t *testing.T, s string) dates.Date {
	t.Helper()
	d, err := dates.Parse(s)
	require.NoError(t, err)
	return d
}

func mkTask(t *testing.T, id int, start, end string) *task.Task {
	t.Helper()
	return &task.Task{
		ID:    id,
		Name:  "task",
		Type:  task.TypeTask,
		Start: mustDate(t, start),
		End:   mustDate(t, end),
	}
}

func fs(from, to int) *task.Dependency {
	return &task.Dependency{From: from, To: to, Type: task.FinishToStart}
}

func byID(tasks []*task.Task) map[int]*task.Task {
	m := make(map[int]*task.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func TestScheduleShiftsDependent(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-05"),
		mkTask(t, 2, "2024-01-03", "2024-01-08"),
	}
	deps := []*task.Dependency{fs(1, 2)}

	out := byID(Schedule(tasks, deps, nil))

	assert.Equal(t, "2024-01-06", out[2].Start.String(), "starts the day after the predecessor ends")
	assert.Equal(t, "2024-01-11", out[2].End.String(), "duration preserved")
	assert.Equal(t, "2024-01-01", out[1].Start.String(), "root tasks untouched")
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-05"),
		mkTask(t, 2, "2024-01-03", "2024-01-08"),
	}
	Schedule(tasks, []*task.Dependency{fs(1, 2)}, nil)

	assert.Equal(t, "2024-01-03", tasks[1].Start.String(), "caller's tasks unchanged")
}

func TestScheduleDurationPreserved(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-02-01", "2024-02-10"),
		mkTask(t, 2, "2024-02-01", "2024-02-04"),
		mkTask(t, 3, "2024-02-02", "2024-02-02"),
	}
	deps := []*task.Dependency{fs(1, 2), fs(2, 3)}

	before := map[int]int{}
	for _, tsk := range tasks {
		before[tsk.ID] = dates.DaysBetween(tsk.Start, tsk.End)
	}

	for _, tsk := range Schedule(tasks, deps, nil) {
		assert.Equal(t, before[tsk.ID], dates.DaysBetween(tsk.Start, tsk.End),
			"task %d duration must not change", tsk.ID)
	}
}

func TestScheduleChainPropagates(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-10"),
		mkTask(t, 2, "2024-01-01", "2024-01-02"),
		mkTask(t, 3, "2024-01-01", "2024-01-01"),
	}
	deps := []*task.Dependency{fs(1, 2), fs(2, 3)}

	out := byID(Schedule(tasks, deps, nil))

	assert.Equal(t, "2024-01-11", out[2].Start.String())
	assert.Equal(t, "2024-01-12", out[2].End.String())
	assert.Equal(t, "2024-01-13", out[3].Start.String(), "shift cascades through the chain")
}

func TestScheduleLatestPredecessorWins(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-03"),
		mkTask(t, 2, "2024-01-01", "2024-01-09"),
		mkTask(t, 3, "2024-01-02", "2024-01-04"),
	}
	deps := []*task.Dependency{fs(1, 3), fs(2, 3)}

	out := byID(Schedule(tasks, deps, nil))
	assert.Equal(t, "2024-01-10", out[3].Start.String(), "latest-finishing predecessor wins")
}

func TestScheduleHonorsLag(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-05"),
		mkTask(t, 2, "2024-01-01", "2024-01-02"),
	}
	deps := []*task.Dependency{{From: 1, To: 2, Type: task.FinishToStart, Lag: 3}}

	out := byID(Schedule(tasks, deps, nil))
	assert.Equal(t, "2024-01-09", out[2].Start.String(), "lag days added after the gap day")
}

func TestScheduleCycleSkipsEdge(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-05"),
		mkTask(t, 2, "2024-01-01", "2024-01-03"),
	}
	// Should never be constructable through the manager, but imported data
	// can carry anything; the scheduler must terminate.
	deps := []*task.Dependency{fs(1, 2), fs(2, 1)}

	out := Schedule(tasks, deps, nil)
	assert.Len(t, out, 2)
}

func TestScheduleUnknownPredecessorIgnored(t *testing.T) {
	tasks := []*task.Task{mkTask(t, 2, "2024-01-01", "2024-01-03")}
	deps := []*task.Dependency{fs(99, 2)}

	out := byID(Schedule(tasks, deps, nil))
	assert.Equal(t, "2024-01-01", out[2].Start.String(), "edges to missing tasks are ignored")
}

func TestCriticalPath(t *testing.T) {
	// 1 (5d) -> 3 (3d); 2 (2d) -> 3. Critical chain is 1 -> 3.
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-05"),
		mkTask(t, 2, "2024-01-01", "2024-01-02"),
		mkTask(t, 3, "2024-01-06", "2024-01-08"),
	}
	deps := []*task.Dependency{fs(1, 3), fs(2, 3)}

	a, err := CriticalPath(tasks, deps)
	require.NoError(t, err)

	assert.Equal(t, 8, a.TotalDays)
	assert.Equal(t, []int{1, 3}, a.CriticalPath)

	ts2 := a.Tasks[2]
	assert.Equal(t, 3, ts2.Slack)
	assert.False(t, ts2.Critical)

	ts1 := a.Tasks[1]
	assert.Equal(t, 0, ts1.EarliestStart)
	assert.Equal(t, 5, ts1.EarliestFinish)
}

func TestCriticalPathCycleFails(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-02"),
		mkTask(t, 2, "2024-01-01", "2024-01-02"),
	}
	_, err := CriticalPath(tasks, []*task.Dependency{fs(1, 2), fs(2, 1)})
	assert.Error(t, err)
}

func TestCriticalPathNoDependencies(t *testing.T) {
	tasks := []*task.Task{
		mkTask(t, 1, "2024-01-01", "2024-01-04"),
		mkTask(t, 2, "2024-01-01", "2024-01-02"),
	}
	a, err := CriticalPath(tasks, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, a.TotalDays)
	// Only the longest task has zero slack.
	assert.Equal(t, []int{1}, a.CriticalPath)
}
