package state

import (
	"github.com/ganttkit/ganttkit/internal/task"
)

// Layout is pixel geometry reserved for the renderer. The core never writes
// it beyond zeroing on rebuild.
type Layout struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CachedTask wraps a task with the derived fields the renderer consumes.
type CachedTask struct {
	Task *task.Task `json:"task"`
	// Level is the longest path to the task from any root through the
	// combined hierarchy + dependency DAG.
	Level int `json:"level"`
	// Visible is false when any hierarchical ancestor is collapsed.
	Visible bool `json:"visible"`
	// Duration is the task's inclusive day count.
	Duration int `json:"duration"`
	// Layout is owned by the renderer.
	Layout Layout `json:"layout"`
}

// rebuildCaches recomputes all derived data after a mutation. The task cache
// and level/visibility passes only run when a mutation marked tasks or
// dependencies dirty (or the id-set fast-path detects a change the flags
// missed); the scroll window is always recomputed.
func (m *Manager) rebuildCaches() {
	if m.dirtyTasks || m.dirtyDeps || m.taskSetChanged() {
		m.rebuildTaskCache()
		m.computeLevels()
		m.computeVisibility()
		m.rebuildVisibleOrder()
		m.dirtyTasks = false
		m.dirtyDeps = false
	}
	m.updateScrollWindow()
}

// taskSetChanged compares the cache's id set against the live task list.
// Safety net for the dirty flags: a same-size add+remove still differs in
// membership.
func (m *Manager) taskSetChanged() bool {
	if len(m.cache) != len(m.state.Tasks) {
		return true
	}
	for _, t := range m.state.Tasks {
		if _, ok := m.cache[t.ID]; !ok {
			return true
		}
	}
	return false
}

func (m *Manager) rebuildTaskCache() {
	m.cache = make(map[int]*CachedTask, len(m.state.Tasks))
	for _, t := range m.state.Tasks {
		m.cache[t.ID] = &CachedTask{
			Task:     t,
			Visible:  true,
			Duration: t.Duration(),
		}
	}
}

// computeLevels assigns each task the length of the longest path reaching it
// from any root, walking both hierarchy children and dependency successors.
// A task revisited while still on the DFS stack closes a cycle; the edge is
// skipped with a warning and the pass completes best-effort. Dependency
// mutations reject cycles up front, so this only fires on imported data.
func (m *Manager) computeLevels() {
	visiting := make(map[int]bool)

	var visit func(id, level int)
	visit = func(id, level int) {
		ct, ok := m.cache[id]
		if !ok {
			return
		}
		if visiting[id] {
			m.logger.Warn("cycle detected during level computation", "task", id)
			return
		}
		if ct.Level >= level && level != 0 {
			return
		}
		if level > ct.Level {
			ct.Level = level
		}
		visiting[id] = true
		for _, child := range ct.Task.Children {
			visit(child, ct.Level+1)
		}
		for _, succ := range ct.Task.Dependents {
			visit(succ, ct.Level+1)
		}
		visiting[id] = false
	}

	for _, t := range m.state.Tasks {
		if m.isRoot(t) {
			visit(t.ID, 0)
		}
	}
}

// isRoot reports whether a task anchors a hierarchy walk: no parent, or a
// parent that does not exist in the chart.
func (m *Manager) isRoot(t *task.Task) bool {
	if t.ParentID == 0 {
		return true
	}
	_, ok := m.cache[t.ParentID]
	return !ok
}

// computeVisibility hides every descendant of a collapsed task. A deeper
// collapsed flag gates its own subtree independently.
func (m *Manager) computeVisibility() {
	var visit func(id int, hidden bool)
	visit = func(id int, hidden bool) {
		ct, ok := m.cache[id]
		if !ok {
			return
		}
		ct.Visible = !hidden
		for _, child := range ct.Task.Children {
			visit(child, hidden || ct.Task.Collapsed)
		}
	}
	for _, t := range m.state.Tasks {
		if m.isRoot(t) {
			visit(t.ID, false)
		}
	}
}

// rebuildVisibleOrder lists visible task IDs in row order: a depth-first
// hierarchy walk in task-list order, the order chart rows are drawn.
func (m *Manager) rebuildVisibleOrder() {
	m.visibleIDs = m.visibleIDs[:0]

	var visit func(id int)
	visit = func(id int) {
		ct, ok := m.cache[id]
		if !ok {
			return
		}
		if ct.Visible {
			m.visibleIDs = append(m.visibleIDs, id)
		}
		for _, child := range ct.Task.Children {
			visit(child)
		}
	}
	for _, t := range m.state.Tasks {
		if m.isRoot(t) {
			visit(t.ID)
		}
	}
}

// updateScrollWindow computes the [StartIndex, EndIndex) row range of the
// visible task list the renderer should draw, padded by BufferSize rows on
// each side and clamped to the list bounds.
func (m *Manager) updateScrollWindow() {
	sc := &m.state.Scroll
	total := len(m.visibleIDs)

	rowHeight := sc.RowHeight
	if rowHeight <= 0 {
		rowHeight = 1
	}
	first := sc.ScrollTop / rowHeight

	start := first - sc.BufferSize
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := first + sc.VisibleRows + sc.BufferSize
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}
	sc.StartIndex = start
	sc.EndIndex = end
}
