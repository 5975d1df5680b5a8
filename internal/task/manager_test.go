package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganttkit/ganttkit/internal/dates"
	gkerrors "github.com/ganttkit/ganttkit/internal/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(nil)
}

func TestCreateTaskDefaults(t *testing.T) {
	m := newTestManager(t)

	created, err := m.CreateTask(Input{Name: "Design review"})
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, TypeTask, created.Type)
	assert.Equal(t, ColorTask, created.Color)
	assert.True(t, created.Start.Equal(dates.Today()), "start defaults to today")
	assert.True(t, created.End.Equal(created.Start.AddDays(1)), "end defaults to start+1")
}

func TestCreateTaskExplicitDates(t *testing.T) {
	m := newTestManager(t)

	created, err := m.CreateTask(Input{Name: "A", Start: "2024-01-01", End: "2024-01-05"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", created.Start.String())
	assert.Equal(t, "2024-01-05", created.End.String())
	assert.Equal(t, 5, created.Duration())
	assert.True(t, created.Draggable)
	assert.True(t, created.Resizable)
	assert.NotNil(t, created.Metadata)
}

func TestCreateTaskInvalidDate(t *testing.T) {
	m := newTestManager(t)

	_, err := m.CreateTask(Input{Name: "bad", Start: "01/02/2024"})
	require.Error(t, err)
	gerr := gkerrors.AsError(err)
	require.NotNil(t, gerr)
	assert.Equal(t, gkerrors.CodeInvalidDate, gerr.Code)
	assert.Empty(t, m.Tasks(), "failed create must leave the task list unchanged")
}

func TestCreateTaskEndBeforeStart(t *testing.T) {
	m := newTestManager(t)

	_, err := m.CreateTask(Input{Name: "bad", Start: "2024-02-10", End: "2024-02-01"})
	require.Error(t, err)
	assert.Empty(t, m.Tasks())
}

func TestCreateMilestoneZeroDuration(t *testing.T) {
	m := newTestManager(t)

	ms, err := m.CreateTask(Input{Name: "Launch", Type: TypeMilestone, Start: "2024-03-15"})
	require.NoError(t, err)
	assert.True(t, ms.Start.Equal(ms.End), "milestone start == end")
	assert.Equal(t, ColorMilestone, ms.Color)
}

func TestIDAssignmentSkipsCollisions(t *testing.T) {
	m := newTestManager(t)

	a, err := m.CreateTask(Input{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)

	b, err := m.CreateTask(Input{Name: "b", ID: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, b.ID)

	c, err := m.CreateTask(Input{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.ID)

	// Requesting a taken ID falls back to allocation.
	d, err := m.CreateTask(Input{Name: "d", ID: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, d.ID)
}

func TestCreateTaskParentChildrenCache(t *testing.T) {
	m := newTestManager(t)

	parent, err := m.CreateTask(Input{Name: "parent", Type: TypeProject})
	require.NoError(t, err)
	child, err := m.CreateTask(Input{Name: "child", ParentID: parent.ID})
	require.NoError(t, err)

	assert.Equal(t, []int{child.ID}, parent.Children)
}

func TestUpdateTaskUnknown(t *testing.T) {
	m := newTestManager(t)

	_, err := m.UpdateTask(42, Patch{})
	require.Error(t, err)
	assert.Equal(t, gkerrors.CodeTaskNotFound, gkerrors.AsError(err).Code)
}

func TestUpdateTaskReparent(t *testing.T) {
	m := newTestManager(t)

	p1, _ := m.CreateTask(Input{Name: "p1", Type: TypeProject})
	p2, _ := m.CreateTask(Input{Name: "p2", Type: TypeProject})
	child, _ := m.CreateTask(Input{Name: "c", ParentID: p1.ID})

	_, err := m.UpdateTask(child.ID, Patch{ParentID: &p2.ID})
	require.NoError(t, err)

	assert.Empty(t, p1.Children, "old parent children cache recomputed")
	assert.Equal(t, []int{child.ID}, p2.Children, "new parent children cache recomputed")
}

func TestUpdateTaskBadDateLeavesTaskUntouched(t *testing.T) {
	m := newTestManager(t)
	tsk, _ := m.CreateTask(Input{Name: "a", Start: "2024-01-01", End: "2024-01-03"})

	name := "renamed"
	bad := "soon"
	_, err := m.UpdateTask(tsk.ID, Patch{Name: &name, End: &bad})
	require.Error(t, err)

	assert.Equal(t, "a", tsk.Name, "no partial application after a bad date")
	assert.Equal(t, "2024-01-03", tsk.End.String())
}

func TestUpdateTaskProgressClamped(t *testing.T) {
	m := newTestManager(t)
	tsk, _ := m.CreateTask(Input{Name: "a"})

	over := 150
	_, err := m.UpdateTask(tsk.ID, Patch{Progress: &over})
	require.NoError(t, err)
	assert.Equal(t, 100, tsk.Progress)

	under := -5
	_, err = m.UpdateTask(tsk.ID, Patch{Progress: &under})
	require.NoError(t, err)
	assert.Equal(t, 0, tsk.Progress)
}

func TestDeleteTaskCascade(t *testing.T) {
	m := newTestManager(t)

	root, _ := m.CreateTask(Input{Name: "root", Type: TypeProject})
	mid, _ := m.CreateTask(Input{Name: "mid", ParentID: root.ID})
	leaf, _ := m.CreateTask(Input{Name: "leaf", ParentID: mid.ID})
	other, _ := m.CreateTask(Input{Name: "other"})

	_, err := m.CreateDependency(leaf.ID, other.ID, FinishToStart, 0)
	require.NoError(t, err)
	_, err = m.CreateDependency(other.ID, root.ID, StartToStart, 0)
	require.NoError(t, err)

	require.True(t, m.DeleteTask(root.ID))

	assert.Len(t, m.Tasks(), 1, "root plus two descendants removed")
	assert.Empty(t, m.Dependencies(), "dependencies touching removed tasks are gone")
	assert.Empty(t, other.DependsOn)
	assert.Empty(t, other.Dependents)
}

func TestDeleteTaskUnknown(t *testing.T) {
	m := newTestManager(t)
	assert.False(t, m.DeleteTask(9))
}

func TestCreateDependencyIdempotent(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.CreateTask(Input{Name: "a"})
	b, _ := m.CreateTask(Input{Name: "b"})

	first, err := m.CreateDependency(a.ID, b.ID, FinishToStart, 0)
	require.NoError(t, err)
	second, err := m.CreateDependency(a.ID, b.ID, FinishToStart, 0)
	require.NoError(t, err)

	assert.Same(t, first, second, "identical create returns the existing dependency")
	assert.Len(t, m.Dependencies(), 1)

	// A different type is a distinct dependency.
	_, err = m.CreateDependency(a.ID, b.ID, StartToStart, 0)
	require.NoError(t, err)
	assert.Len(t, m.Dependencies(), 2)
}

func TestCreateDependencyUnknownTask(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.CreateTask(Input{Name: "a"})

	_, err := m.CreateDependency(a.ID, 99, FinishToStart, 0)
	require.Error(t, err)
	assert.Equal(t, gkerrors.CodeTaskNotFound, gkerrors.AsError(err).Code)
	assert.Empty(t, m.Dependencies())
}

func TestCreateDependencyCycleRollback(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.CreateTask(Input{Name: "a"})
	b, _ := m.CreateTask(Input{Name: "b"})
	c, _ := m.CreateTask(Input{Name: "c"})

	_, err := m.CreateDependency(a.ID, b.ID, FinishToStart, 0)
	require.NoError(t, err)
	_, err = m.CreateDependency(b.ID, c.ID, FinishToStart, 0)
	require.NoError(t, err)

	_, err = m.CreateDependency(c.ID, a.ID, FinishToStart, 0)
	require.Error(t, err)
	assert.Equal(t, gkerrors.CodeDependencyCycle, gkerrors.AsError(err).Code)

	assert.Len(t, m.Dependencies(), 2, "rejected dependency rolled back")
	assert.False(t, m.HasCircularDependencies())
	assert.Empty(t, a.DependsOn, "index rebuilt after rollback")
}

func TestAcyclicityInvariant(t *testing.T) {
	m := newTestManager(t)
	var ids []int
	for i := 0; i < 6; i++ {
		tsk, _ := m.CreateTask(Input{Name: "t"})
		ids = append(ids, tsk.ID)
	}

	// A mix of valid chains and cycle attempts; the graph must stay acyclic
	// after every call, accepted or rejected.
	attempts := [][2]int{
		{ids[0], ids[1]}, {ids[1], ids[2]}, {ids[2], ids[0]}, // cycle attempt
		{ids[2], ids[3]}, {ids[3], ids[4]}, {ids[4], ids[1]}, // cycle attempt
		{ids[4], ids[5]}, {ids[5], ids[0]}, // cycle attempt (5->0->1->...->5)
	}
	for _, at := range attempts {
		_, _ = m.CreateDependency(at[0], at[1], FinishToStart, 0)
		assert.False(t, m.HasCircularDependencies(),
			"graph must stay acyclic after createDependency(%d, %d)", at[0], at[1])
	}
}

func TestDeleteDependencyIgnoresType(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.CreateTask(Input{Name: "a"})
	b, _ := m.CreateTask(Input{Name: "b"})

	_, err := m.CreateDependency(a.ID, b.ID, StartToStart, 2)
	require.NoError(t, err)

	assert.True(t, m.DeleteDependency(a.ID, b.ID))
	assert.False(t, m.DeleteDependency(a.ID, b.ID))
	assert.Empty(t, m.Dependencies())
}

func TestHierarchyQueries(t *testing.T) {
	m := newTestManager(t)

	root, _ := m.CreateTask(Input{Name: "root", Type: TypeProject})
	a, _ := m.CreateTask(Input{Name: "a", ParentID: root.ID})
	b, _ := m.CreateTask(Input{Name: "b", ParentID: root.ID})
	leaf, _ := m.CreateTask(Input{Name: "leaf", ParentID: a.ID})

	descIDs := func() []int {
		var out []int
		for _, d := range m.Descendants(root.ID) {
			out = append(out, d.ID)
		}
		return out
	}()
	assert.Equal(t, []int{a.ID, leaf.ID, b.ID}, descIDs, "depth-first order")

	anc := m.Ancestors(leaf.ID)
	require.Len(t, anc, 2)
	assert.Equal(t, a.ID, anc[0].ID, "nearest ancestor first")
	assert.Equal(t, root.ID, anc[1].ID)

	assert.Empty(t, m.Ancestors(root.ID))
}

func TestProjectProgress(t *testing.T) {
	m := newTestManager(t)

	proj, _ := m.CreateTask(Input{Name: "proj", Type: TypeProject})
	_, err := m.CreateTask(Input{Name: "a", ParentID: proj.ID, Progress: 50})
	require.NoError(t, err)
	mid, _ := m.CreateTask(Input{Name: "b", ParentID: proj.ID, Progress: 100})
	_, err = m.CreateTask(Input{Name: "c", ParentID: mid.ID, Progress: 25})
	require.NoError(t, err)

	// (50 + 100 + 25) / 3 = 58.33 -> 58
	assert.Equal(t, 58, m.ProjectProgress(proj.ID))

	plain, _ := m.CreateTask(Input{Name: "plain"})
	assert.Equal(t, 0, m.ProjectProgress(plain.ID), "non-project tasks report 0")
	assert.Equal(t, 0, m.ProjectProgress(404), "unknown tasks report 0")

	empty, _ := m.CreateTask(Input{Name: "empty", Type: TypeProject})
	assert.Equal(t, 0, m.ProjectProgress(empty.ID), "projects without subtasks report 0")
}

func TestTaskDurationInclusive(t *testing.T) {
	m := newTestManager(t)

	same, _ := m.CreateTask(Input{Name: "same", Start: "2024-01-01", End: "2024-01-01"})
	assert.Equal(t, 1, m.TaskDuration(same))

	span, _ := m.CreateTask(Input{Name: "span", Start: "2024-01-03", End: "2024-01-08"})
	assert.Equal(t, 6, m.TaskDuration(span))
}

func TestLoadRebuildsCaches(t *testing.T) {
	m := newTestManager(t)

	tasks := []*Task{
		{ID: 1, Name: "p", Type: TypeProject},
		{ID: 2, Name: "c", ParentID: 1},
		{ID: 3, Name: "d"},
	}
	deps := []*Dependency{{From: 2, To: 3, Type: FinishToStart}}
	m.Load(tasks, deps)

	p, _ := m.Task(1)
	assert.Equal(t, []int{2}, p.Children)
	d, _ := m.Task(3)
	assert.Equal(t, []int{2}, d.DependsOn)

	// New IDs skip the loaded ones.
	created, err := m.CreateTask(Input{Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
}
