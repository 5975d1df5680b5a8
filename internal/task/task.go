// Package task provides the task and dependency model for ganttkit charts,
// plus the Manager that owns CRUD over both with referential integrity.
package task

import (
	"github.com/ganttkit/ganttkit/internal/dates"
)

// Type classifies a task's role on the chart.
type Type string

const (
	// TypeTask is a regular date-ranged bar.
	TypeTask Type = "task"
	// TypeMilestone is a zero-duration marker; start == end by convention.
	TypeMilestone Type = "milestone"
	// TypeProject is a summary task whose progress derives from its subtasks.
	TypeProject Type = "project"
)

// ValidTypes returns all valid task types.
func ValidTypes() []Type {
	return []Type{TypeTask, TypeMilestone, TypeProject}
}

// IsValidType returns true if t is a valid task type.
func IsValidType(t Type) bool {
	switch t {
	case TypeTask, TypeMilestone, TypeProject:
		return true
	default:
		return false
	}
}

// Default bar colors per task type. Explicit colors on a task win.
const (
	ColorTask      = "#3b82f6"
	ColorMilestone = "#f59e0b"
	ColorProject   = "#8b5cf6"
)

// DefaultColor returns the default bar color for a task type.
func DefaultColor(t Type) string {
	switch t {
	case TypeMilestone:
		return ColorMilestone
	case TypeProject:
		return ColorProject
	default:
		return ColorTask
	}
}

// Task represents a schedulable unit of work on the chart.
//
// Children, DependsOn and Dependents are derived caches: Children is rebuilt
// from ParentID scans, the other two from the dependency list. They are never
// edited directly.
type Task struct {
	// ID is the unique, stable identifier. IDs are small positive integers
	// assigned by the Manager.
	ID int `yaml:"id" json:"id"`

	// Name is the label shown on the chart row.
	Name string `yaml:"name" json:"name"`

	// Start is the first day of the task.
	Start dates.Date `yaml:"start" json:"start"`

	// End is the last day of the task, inclusive. End never precedes Start.
	End dates.Date `yaml:"end" json:"end"`

	// Progress is percent complete, 0-100.
	Progress int `yaml:"progress" json:"progress"`

	// Type classifies the task (task, milestone, project).
	Type Type `yaml:"type" json:"type"`

	// ParentID nests this task under another. Zero means top-level.
	// This is the single authoritative source of the hierarchy.
	ParentID int `yaml:"parent_id,omitempty" json:"parentId,omitempty"`

	// Children lists direct child task IDs. Derived from ParentID scans.
	Children []int `yaml:"-" json:"children,omitempty"`

	// DependsOn lists predecessor task IDs. Derived from the dependency list.
	DependsOn []int `yaml:"-" json:"dependsOn,omitempty"`

	// Dependents lists successor task IDs. Derived from the dependency list.
	Dependents []int `yaml:"-" json:"dependencies,omitempty"`

	// Collapsed hides all hierarchical descendants when true.
	Collapsed bool `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`

	// Color is the bar color. Defaults by Type when not set.
	Color string `yaml:"color,omitempty" json:"color,omitempty"`

	// Draggable and Resizable gate pointer interactions in the UI layer.
	Draggable bool `yaml:"draggable" json:"draggable"`
	Resizable bool `yaml:"resizable" json:"resizable"`

	// Readonly marks the task as not editable in the UI layer.
	Readonly bool `yaml:"readonly,omitempty" json:"readonly,omitempty"`

	// Metadata holds arbitrary key-value data.
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Duration returns the task's length in days, counting both endpoints:
// a same-day task has duration 1.
func (t *Task) Duration() int {
	return dates.InclusiveDays(t.Start, t.End)
}

// IsMilestone reports whether the task is a milestone.
func (t *Task) IsMilestone() bool {
	return t.Type == TypeMilestone
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Children = append([]int(nil), t.Children...)
	c.DependsOn = append([]int(nil), t.DependsOn...)
	c.Dependents = append([]int(nil), t.Dependents...)
	if t.Metadata != nil {
		c.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
