package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganttkit/ganttkit/internal/task"
)

// buildTree loads a three-level hierarchy: root -> mid -> leaf, plus a
// standalone sibling, using explicit IDs so assertions stay readable.
func buildTree(t *testing.T, m *Manager) {
	t.Helper()
	m.UpdateTasks([]*task.Task{
		{ID: 1, Name: "root"},
		{ID: 2, Name: "mid", ParentID: 1},
		{ID: 3, Name: "leaf", ParentID: 2},
		{ID: 4, Name: "sibling"},
	})
}

func TestLevelsFromHierarchy(t *testing.T) {
	m := NewManager()
	buildTree(t, m)

	for id, want := range map[int]int{1: 0, 2: 1, 3: 2, 4: 0} {
		ct, ok := m.TaskCache(id)
		require.True(t, ok, "task %d", id)
		assert.Equal(t, want, ct.Level, "task %d", id)
	}
}

func TestLevelsTakeLongestPath(t *testing.T) {
	m := NewManager()
	m.UpdateTasks([]*task.Task{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
		{ID: 3, Name: "c"},
	})
	// Two routes into 3: direct (level 1) and through 2 (level 2). The
	// longer one wins.
	require.NoError(t, m.UpdateDependencies([]*task.Dependency{
		{From: 1, To: 2, Type: task.FinishToStart},
		{From: 2, To: 3, Type: task.FinishToStart},
		{From: 1, To: 3, Type: task.FinishToStart},
	}))

	ct, ok := m.TaskCache(3)
	require.True(t, ok)
	assert.Equal(t, 2, ct.Level)
}

func TestOrphanedParentTreatedAsRoot(t *testing.T) {
	m := NewManager()
	m.UpdateTasks([]*task.Task{
		{ID: 1, Name: "adrift", ParentID: 99},
	})

	ct, ok := m.TaskCache(1)
	require.True(t, ok)
	assert.Equal(t, 0, ct.Level)
	assert.True(t, ct.Visible)
}

func TestCollapseHidesTransitiveDescendants(t *testing.T) {
	m := NewManager()
	buildTree(t, m)

	require.NoError(t, m.ToggleTaskCollapse(1))

	root, _ := m.TaskCache(1)
	mid, _ := m.TaskCache(2)
	leaf, _ := m.TaskCache(3)
	sibling, _ := m.TaskCache(4)
	assert.True(t, root.Visible, "collapsed task itself stays visible")
	assert.False(t, mid.Visible)
	assert.False(t, leaf.Visible, "hiding is transitive")
	assert.True(t, sibling.Visible, "unrelated trees unaffected")

	require.NoError(t, m.ToggleTaskCollapse(1))
	mid, _ = m.TaskCache(2)
	leaf, _ = m.TaskCache(3)
	assert.True(t, mid.Visible)
	assert.True(t, leaf.Visible, "expanding restores the subtree")
}

func TestNestedCollapseSurvivesOuterExpand(t *testing.T) {
	m := NewManager()
	buildTree(t, m)

	require.NoError(t, m.ToggleTaskCollapse(2)) // inner
	require.NoError(t, m.ToggleTaskCollapse(1)) // outer
	require.NoError(t, m.ToggleTaskCollapse(1)) // expand outer only

	mid, _ := m.TaskCache(2)
	leaf, _ := m.TaskCache(3)
	assert.True(t, mid.Visible)
	assert.False(t, leaf.Visible, "inner collapse still gates its subtree")
}

func TestVisibleOrderIsHierarchical(t *testing.T) {
	m := NewManager()
	buildTree(t, m)

	assert.Equal(t, []int{1, 2, 3, 4}, m.visibleIDs)

	require.NoError(t, m.ToggleTaskCollapse(2))
	assert.Equal(t, []int{1, 2, 4}, m.visibleIDs, "hidden rows drop out of the order")
}

func TestCacheDurationInclusive(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Dispatch(AddTask{Input: task.Input{
		Name:  "a",
		Start: "2024-01-01",
		End:   "2024-01-05",
	}}))

	ct, ok := m.TaskCache(1)
	require.True(t, ok)
	assert.Equal(t, 5, ct.Duration)
}

func TestImportedCycleDoesNotHang(t *testing.T) {
	m := NewManager()
	// A hierarchy cycle can only arrive through bulk import; the level
	// pass must terminate and keep serving.
	m.UpdateTasks([]*task.Task{
		{ID: 1, Name: "a", ParentID: 2},
		{ID: 2, Name: "b", ParentID: 1},
	})

	_, ok := m.TaskCache(1)
	assert.True(t, ok)
}

func TestScrollWindowShrinksWithVisibility(t *testing.T) {
	m := NewManager()
	tasks := make([]*task.Task, 0, 40)
	tasks = append(tasks, &task.Task{ID: 1, Name: "root"})
	for i := 2; i <= 40; i++ {
		tasks = append(tasks, &task.Task{ID: i, Name: "child", ParentID: 1})
	}
	m.UpdateTasks(tasks)
	require.Equal(t, 40, len(m.visibleIDs))

	require.NoError(t, m.ToggleTaskCollapse(1))

	s := m.State()
	assert.Equal(t, 1, s.Scroll.EndIndex, "window clamps to the one remaining row")
}
