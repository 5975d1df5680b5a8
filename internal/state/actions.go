package state

import (
	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/task"
)

// Action is the closed set of mutations the dispatcher accepts. Each action
// kind carries its own typed payload; the dispatcher's type switch is
// exhaustive, so an unhandled action cannot slip through at runtime.
type Action interface {
	isAction()
}

// AddTask appends a new task built from the input.
type AddTask struct {
	Input task.Input
}

// UpdateTask merges a partial patch into the task with the given ID.
type UpdateTask struct {
	ID    int
	Patch task.Patch
}

// DeleteTask removes a task, its descendants, and their dependencies.
type DeleteTask struct {
	ID int
}

// MoveTask sets a task's dates directly: the drag fast path, no duration
// recompute beyond the cache rebuild.
type MoveTask struct {
	ID    int
	Start dates.Date
	End   dates.Date
}

// AddDependency links two tasks.
type AddDependency struct {
	From int
	To   int
	Type task.DependencyType
	Lag  int
}

// DeleteDependency removes the (from, to) dependency regardless of type.
type DeleteDependency struct {
	From int
	To   int
}

// ChangeView sets the timeline granularity.
type ChangeView struct {
	Mode ViewMode
}

// SelectTask adds a task to the selection. Set semantics: selecting an
// already-selected task is a no-op.
type SelectTask struct {
	ID int
}

// DeselectTask removes a task from the selection.
type DeselectTask struct {
	ID int
}

// SetDates adjusts the global visible date window.
type SetDates struct {
	Start dates.Date
	End   dates.Date
}

func (AddTask) isAction()          {}
func (UpdateTask) isAction()       {}
func (DeleteTask) isAction()       {}
func (MoveTask) isAction()         {}
func (AddDependency) isAction()    {}
func (DeleteDependency) isAction() {}
func (ChangeView) isAction()       {}
func (SelectTask) isAction()       {}
func (DeselectTask) isAction()     {}
func (SetDates) isAction()         {}
