// Package state provides the single source of truth for a chart: the
// canonical task and dependency lists, view settings, derived caches, and
// transactional mutation with undo/redo history.
//
// All access is single-goroutine by contract, matching the event-driven UI
// runtime the core serves. Consumers receive snapshots and must route every
// mutation through the Manager's API.
package state

import (
	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/task"
)

// ViewMode is the timeline granularity.
type ViewMode string

const (
	ViewDay     ViewMode = "day"
	ViewWeek    ViewMode = "week"
	ViewMonth   ViewMode = "month"
	ViewQuarter ViewMode = "quarter"
	ViewYear    ViewMode = "year"
)

// IsValidViewMode returns true if m is a valid view mode.
func IsValidViewMode(m ViewMode) bool {
	switch m {
	case ViewDay, ViewWeek, ViewMonth, ViewQuarter, ViewYear:
		return true
	default:
		return false
	}
}

// ViewSettings holds the visible timeline window and granularity.
type ViewSettings struct {
	Mode  ViewMode   `yaml:"mode" json:"mode"`
	Start dates.Date `yaml:"start" json:"start"`
	End   dates.Date `yaml:"end" json:"end"`
}

// VirtualScroll tracks the scroll position and the derived row window the
// renderer should draw. StartIndex/EndIndex are a half-open range into the
// visible (post-filter) task list.
type VirtualScroll struct {
	ScrollTop   int `yaml:"scroll_top" json:"scrollTop"`
	RowHeight   int `yaml:"row_height" json:"rowHeight"`
	BufferSize  int `yaml:"buffer_size" json:"bufferSize"`
	VisibleRows int `yaml:"visible_rows" json:"visibleRows"`
	StartIndex  int `yaml:"-" json:"startIndex"`
	EndIndex    int `yaml:"-" json:"endIndex"`
}

// ChartConfig holds chart-wide settings that are part of the state snapshot.
type ChartConfig struct {
	// ReadOnly disables all UI-initiated edits.
	ReadOnly bool `yaml:"read_only" json:"readOnly"`
	// AutoSchedule reruns the scheduler after dependency changes.
	AutoSchedule bool `yaml:"auto_schedule" json:"autoSchedule"`
	// DateFormat is the display format hint for the renderer.
	DateFormat string `yaml:"date_format" json:"dateFormat"`
}

// Resource is a person or asset that can be referenced by task metadata.
type Resource struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// State is the canonical chart snapshot. The Manager owns the one live
// instance; history entries and subscriber notifications carry deep clones.
type State struct {
	Tasks           []*task.Task       `json:"tasks"`
	Dependencies    []*task.Dependency `json:"dependencies"`
	SelectedTaskIDs []int              `json:"selectedTaskIds"`
	View            ViewSettings       `json:"viewSettings"`
	Scroll          VirtualScroll      `json:"virtualScroll"`
	Config          ChartConfig        `json:"config"`
	Resources       []Resource         `json:"resources"`
}

// defaultState returns a fresh state with default view and scroll settings.
func defaultState() *State {
	today := dates.Today()
	return &State{
		Tasks:           []*task.Task{},
		Dependencies:    []*task.Dependency{},
		SelectedTaskIDs: []int{},
		View: ViewSettings{
			Mode:  ViewDay,
			Start: today.AddDays(-7),
			End:   today.AddDays(30),
		},
		Scroll: VirtualScroll{
			RowHeight:   40,
			BufferSize:  5,
			VisibleRows: 20,
		},
		Config: ChartConfig{
			AutoSchedule: false,
			DateFormat:   dates.Layout,
		},
		Resources: []Resource{},
	}
}

// Clone returns a deep copy of the state. Mutable substructures (tasks,
// dependencies, id lists) are copied explicitly; no serialization round-trip
// is involved.
func (s *State) Clone() *State {
	c := &State{
		Tasks:           task.CloneTasks(s.Tasks),
		Dependencies:    task.CloneDependencies(s.Dependencies),
		SelectedTaskIDs: append([]int(nil), s.SelectedTaskIDs...),
		View:            s.View,
		Scroll:          s.Scroll,
		Config:          s.Config,
		Resources:       append([]Resource(nil), s.Resources...),
	}
	return c
}

// IsSelected reports whether a task ID is in the selection.
func (s *State) IsSelected(id int) bool {
	for _, sel := range s.SelectedTaskIDs {
		if sel == id {
			return true
		}
	}
	return false
}
